package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cf_mashup/internal/app/service"
	"cf_mashup/internal/common"
	"cf_mashup/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const maxRequestBodyBytes = 1 << 20

type MashupHandler struct {
	mashupService       *service.MashupService
	generateMiddlewares []func(http.Handler) http.Handler
}

// NewMashupHandler builds the handler. generateMiddlewares wrap only the
// generation routes (rate limiting).
func NewMashupHandler(ms *service.MashupService, generateMiddlewares ...func(http.Handler) http.Handler) *MashupHandler {
	return &MashupHandler{mashupService: ms, generateMiddlewares: generateMiddlewares}
}

func (h *MashupHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(gen chi.Router) {
		gen.Use(h.generateMiddlewares...)
		gen.Post("/generate-mashup/", h.generateMashup) // POST /generate-mashup/
		gen.Post("/generate-mashup", h.generateMashup)
	})

	r.Get("/mashup/{mashupID}", h.getMashup)                // GET /mashup/42
	r.Get("/mashup/{mashupID}/details", h.getMashupDetails) // GET /mashup/42/details
}

func (h *MashupHandler) generateMashup(w http.ResponseWriter, r *http.Request) {
	req := model.NewMashupRequest()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		common.RespondWithAPIError(w, fmt.Errorf("%w: invalid request: %s", common.ErrBadRequest, err.Error()))
		return
	}

	resp, err := h.mashupService.Generate(r.Context(), req)
	if err != nil {
		common.RespondWithAPIError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *MashupHandler) getMashup(w http.ResponseWriter, r *http.Request) {
	id, ok := mashupIDParam(w, r)
	if !ok {
		return
	}

	resp, err := h.mashupService.Get(r.Context(), id)
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *MashupHandler) getMashupDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := mashupIDParam(w, r)
	if !ok {
		return
	}

	details, err := h.mashupService.GetDetails(r.Context(), id)
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, details)
}

// mashupIDParam answers 404 itself when the path id is not an integer.
func mashupIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "mashupID"), 10, 64)
	if err != nil {
		respondWithLookupError(w, common.ErrNotFound)
		return 0, false
	}
	return id, true
}

func respondWithLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrNotFound) {
		common.RespondWithJSON(w, http.StatusNotFound, common.ErrorResponse{
			Detail: "Mashup not found",
			Code:   common.ErrorCode(err),
		})
		return
	}
	common.RespondWithAPIError(w, err)
}
