package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/service"
	"lesson-notes-server/pkg/logger"
	"lesson-notes-server/pkg/response"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validate
	log         *logger.Logger
}

func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
		log:         log.With("handler", "auth"),
	}
}

// IframeToken issues the launch token the LMS embeds in the widget iframe.
func (h *AuthHandler) IframeToken(w http.ResponseWriter, r *http.Request) {
	var req domain.IframeTokenRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	token, err := h.authService.IssueIframeToken(&req)
	if err != nil {
		h.log.Error("issue iframe token", "student_id", req.StudentID, "error", err)
		response.InternalError(w, "Failed to issue token")
		return
	}

	h.log.Info("iframe token issued", "student_id", req.StudentID, "course_id", req.CourseID)

	response.Success(w, token)
}
