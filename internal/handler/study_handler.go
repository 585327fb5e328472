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

type StudyHandler struct {
	flashcards *service.FlashcardService
	quizzes    *service.QuizService
	validate   *validator.Validate
	log        *logger.Logger
}

func NewStudyHandler(flashcards *service.FlashcardService, quizzes *service.QuizService, log *logger.Logger) *StudyHandler {
	return &StudyHandler{
		flashcards: flashcards,
		quizzes:    quizzes,
		validate:   validator.New(),
		log:        log.With("handler", "study"),
	}
}

func (h *StudyHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	cards, err := h.flashcards.Generate(r.Context(), middleware.GetStudentID(r), req.NoteID, req.Count)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to generate flashcards")
		return
	}

	response.WithMessage(w, http.StatusCreated, "Flashcards generated successfully", cards)
}

func (h *StudyHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.flashcards.ListByNote(r.Context(), middleware.GetStudentID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list flashcards")
		return
	}

	response.Success(w, nonNil(cards))
}

func (h *StudyHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	quizzes, err := h.quizzes.Generate(r.Context(), middleware.GetStudentID(r), req.NoteID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to generate quiz")
		return
	}

	response.WithMessage(w, http.StatusCreated, "Quiz generated successfully", quizzes)
}

func (h *StudyHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListByNote(r.Context(), middleware.GetStudentID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list quizzes")
		return
	}

	response.Success(w, nonNil(quizzes))
}

func (h *StudyHandler) SubmitExam(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitExamRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	submission, err := h.quizzes.SubmitExam(r.Context(), middleware.GetStudentID(r), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to save exam result")
		return
	}

	response.Success(w, submission)
}
