package common

import (
	"net/http"

	"github.com/goccy/go-json"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Detail: message})
}

// RespondWithAPIError writes err with its mapped status and code. Internal
// errors are not echoed back to the client.
func RespondWithAPIError(w http.ResponseWriter, err error) {
	status := HTTPStatusFromError(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = ErrInternalServer.Error()
	}
	RespondWithJSON(w, status, ErrorResponse{Detail: detail, Code: ErrorCode(err)})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
