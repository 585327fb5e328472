package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/export"
	"lesson-notes-server/internal/middleware"
	"lesson-notes-server/internal/service"
	"lesson-notes-server/pkg/logger"
	"lesson-notes-server/pkg/response"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
	log      *logger.Logger
}

func NewNoteHandler(service *service.NoteService, log *logger.Logger) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: validator.New(),
		log:      log.With("handler", "notes"),
	}
}

// GetOrCreate opens the note for the launched lesson, reusing the latest
// one while it is still blank.
func (h *NoteHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.GetOrCreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.GetOrCreate(r.Context(), middleware.GetIdentity(r), middleware.GetInstanceID(r), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to open note")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	response.WithMessage(w, status, result.Status.Message(), result.Note)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	note, err := h.service.Create(r.Context(), middleware.GetIdentity(r), middleware.GetInstanceID(r), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create note")
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(r.Context(), middleware.GetIdentity(r))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list notes")
		return
	}

	response.Success(w, nonNil(notes))
}

func (h *NoteHandler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)

	notes, err := h.service.ListByCourse(r.Context(), identity.StudentID, identity.CourseID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list notes")
		return
	}

	response.Success(w, nonNil(notes))
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.Get(r.Context(), middleware.GetStudentID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateNoteRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	note, err := h.service.Update(r.Context(), middleware.GetStudentID(r), middleware.GetInstanceID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.GetStudentID(r), middleware.GetInstanceID(r), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete note")
		return
	}

	response.WithMessage(w, http.StatusOK, "Note deleted successfully", nil)
}

func (h *NoteHandler) ExportWord(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.ExportWord(r.Context(), middleware.GetStudentID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to export note")
		return
	}

	writeFile(w, file)
}

func (h *NoteHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.ExportPDF(r.Context(), middleware.GetStudentID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to export note")
		return
	}

	writeFile(w, file)
}

func writeFile(w http.ResponseWriter, file *export.File) {
	response.File(w, file.Name, file.ContentType, file.Data, file.Inline)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
