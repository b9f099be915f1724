package server

import (
	"encoding/json"
	"net/http"

	"github.com/fedecoop/padron/pkg/domain"
)

// envelope is the uniform response body for the JSON API.
type envelope struct {
	Success          bool        `json:"success"`
	Data             interface{} `json:"data,omitempty"`
	Error            string      `json:"error,omitempty"`
	Total            *int        `json:"total,omitempty"`
	PrimaryKeyColumn string      `json:"primaryKeyColumn,omitempty"`
}

func respondWithData(w http.ResponseWriter, code int, data interface{}) {
	respondWithJSON(w, code, envelope{Success: true, Data: data})
}

func respondWithResult(w http.ResponseWriter, rows interface{}, total int, primaryKey string) {
	respondWithJSON(w, http.StatusOK, envelope{
		Success:          true,
		Data:             rows,
		Total:            &total,
		PrimaryKeyColumn: primaryKey,
	})
}

func respondWithError(w http.ResponseWriter, err error) {
	respondWithJSON(w, statusForError(err), envelope{Success: false, Error: err.Error()})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusForError maps the engine's typed errors onto HTTP status codes.
// Anything unrecognized is a 500.
func statusForError(err error) int {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsConflict(err):
		return http.StatusConflict
	case domain.IsReferential(err):
		return http.StatusUnprocessableEntity
	case domain.IsAccessDenied(err):
		return http.StatusForbidden
	case domain.IsTransient(err):
		return http.StatusServiceUnavailable
	case domain.IsSchema(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
