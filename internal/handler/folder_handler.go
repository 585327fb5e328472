package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/middleware"
	"lesson-notes-server/internal/service"
	"lesson-notes-server/pkg/logger"
	"lesson-notes-server/pkg/response"
)

type FolderHandler struct {
	service  *service.FolderService
	validate *validator.Validate
	log      *logger.Logger
}

func NewFolderHandler(service *service.FolderService, log *logger.Logger) *FolderHandler {
	return &FolderHandler{
		service:  service,
		validate: validator.New(),
		log:      log.With("handler", "folders"),
	}
}

func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)

	folders, err := h.service.List(r.Context(), identity.StudentID, identity.CourseID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list folders")
		return
	}

	response.Success(w, nonNil(folders))
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFolderRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	identity := middleware.GetIdentity(r)

	folder, err := h.service.Create(r.Context(), identity.StudentID, identity.CourseID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create folder")
		return
	}

	response.Created(w, folder)
}

func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req domain.RenameFolderRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	folder, err := h.service.Rename(r.Context(), middleware.GetStudentID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to rename folder")
		return
	}

	response.Success(w, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.GetStudentID(r), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete folder")
		return
	}

	response.WithMessage(w, http.StatusOK, "Folder deleted successfully", nil)
}

func (h *FolderHandler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req domain.MoveNoteRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	note, err := h.service.MoveNote(r.Context(), middleware.GetStudentID(r), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to move note")
		return
	}

	response.Success(w, note)
}
