package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"lesson-notes-server/internal/ai"
	"lesson-notes-server/internal/service"
	"lesson-notes-server/pkg/logger"
	"lesson-notes-server/pkg/response"
)

// decode reads a JSON body into v and validates it. It writes the 400
// response itself and reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := validate.Struct(v); err != nil {
		response.BadRequest(w, err.Error())
		return false
	}

	return true
}

func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		response.NotFound(w, "Note not found")
	case errors.Is(err, service.ErrFolderNotFound):
		response.NotFound(w, "Folder not found")
	case errors.Is(err, service.ErrAccessDenied):
		response.Forbidden(w, "Access denied")
	case errors.Is(err, service.ErrFolderNotEmpty):
		response.BadRequest(w, "Folder must be empty before it can be deleted")
	case errors.Is(err, service.ErrContentTooShort):
		response.Error(w, http.StatusUnprocessableEntity, "Note content is too short or empty")
	case errors.Is(err, service.ErrInvalidAIResponse):
		response.Error(w, http.StatusBadGateway, "Invalid AI response format")
	case errors.Is(err, ai.ErrNotConfigured):
		response.Error(w, http.StatusServiceUnavailable, "AI generation is not configured")
	default:
		log.Error(fallback, "error", err)
		response.InternalError(w, fallback)
	}
}
