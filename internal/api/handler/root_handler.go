package handler

import (
	"net/http"

	"cf_mashup/internal/common"

	"github.com/go-chi/chi/v5"
)

const welcomeMessage = "Welcome to the codeforces mashup API!"

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.welcome)
	r.Get("/health", h.health)
}

func (h *RootHandler) welcome(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: welcomeMessage})
}

func (h *RootHandler) health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
