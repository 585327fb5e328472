package service

import (
	"context"
	"errors"
	"time"

	"lesson-notes-server/internal/ai"
	"lesson-notes-server/internal/document"
	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/repository"
	"lesson-notes-server/pkg/logger"

	"github.com/google/uuid"
)

const (
	// MaxStudyItemsPerNote caps the flashcards and the quiz questions kept
	// for one note. The oldest are dropped first.
	MaxStudyItemsPerNote  = 20
	DefaultFlashcardCount = 5
	minContentLength      = 10
)

// StudyGenerator produces study material from note text.
type StudyGenerator interface {
	Flashcards(ctx context.Context, content string, count int) ([]ai.FlashcardDraft, error)
	Quiz(ctx context.Context, content string) ([]ai.QuizDraft, error)
}

// noteText loads the owned note and returns its plain text, rejecting notes
// with too little text to study from.
func noteText(ctx context.Context, repo repository.NoteRepository, studentID int64, noteID string) (*domain.Note, string, error) {
	note, err := ownedNote(ctx, repo, studentID, noteID)
	if err != nil {
		return nil, "", err
	}

	text := document.ExtractText(document.Parse(note.Content))
	if len(text) < minContentLength {
		return nil, "", ErrContentTooShort
	}

	return note, text, nil
}

// overflow returns how many of the oldest existing items must go so that
// existing plus incoming stays within the cap.
func overflow(existing, incoming int) int {
	n := existing + incoming - MaxStudyItemsPerNote
	if n < 0 {
		return 0
	}
	if n > existing {
		return existing
	}
	return n
}

type FlashcardService struct {
	notes     repository.NoteRepository
	cards     repository.FlashcardRepository
	generator StudyGenerator
	log       *logger.Logger
}

func NewFlashcardService(notes repository.NoteRepository, cards repository.FlashcardRepository, generator StudyGenerator, log *logger.Logger) *FlashcardService {
	return &FlashcardService{
		notes:     notes,
		cards:     cards,
		generator: generator,
		log:       log.With("service", "FlashcardService"),
	}
}

func (s *FlashcardService) Generate(ctx context.Context, studentID int64, noteID string, count int) ([]*domain.Flashcard, error) {
	if count <= 0 {
		count = DefaultFlashcardCount
	}

	note, text, err := noteText(ctx, s.notes, studentID, noteID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.generator.Flashcards(ctx, text, count)
	if err != nil {
		s.log.Warn("flashcard generation failed", "note_id", note.ID, "error", err)
		return nil, err
	}
	if len(drafts) > MaxStudyItemsPerNote {
		drafts = drafts[:MaxStudyItemsPerNote]
	}

	existing, err := s.cards.ListByNote(ctx, note.ID)
	if err != nil {
		return nil, err
	}

	if n := overflow(len(existing), len(drafts)); n > 0 {
		ids := make([]string, 0, n)
		for _, c := range existing[:n] {
			ids = append(ids, c.ID)
		}
		if err := s.cards.DeleteMany(ctx, ids); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	cards := make([]*domain.Flashcard, 0, len(drafts))
	for i, d := range drafts {
		cards = append(cards, &domain.Flashcard{
			ID:        uuid.New().String(),
			NoteID:    note.ID,
			Question:  d.Question,
			Answer:    d.Answer,
			CreatedAt: now.Add(time.Duration(i)),
		})
	}

	if err := s.cards.CreateMany(ctx, cards); err != nil {
		return nil, err
	}

	return cards, nil
}

func (s *FlashcardService) ListByNote(ctx context.Context, studentID int64, noteID string) ([]*domain.Flashcard, error) {
	if _, err := ownedNote(ctx, s.notes, studentID, noteID); err != nil {
		return nil, err
	}
	return s.cards.ListByNote(ctx, noteID)
}

type QuizService struct {
	notes     repository.NoteRepository
	quizzes   repository.QuizRepository
	results   repository.ExamResultRepository
	generator StudyGenerator
	log       *logger.Logger
}

func NewQuizService(
	notes repository.NoteRepository,
	quizzes repository.QuizRepository,
	results repository.ExamResultRepository,
	generator StudyGenerator,
	log *logger.Logger,
) *QuizService {
	return &QuizService{
		notes:     notes,
		quizzes:   quizzes,
		results:   results,
		generator: generator,
		log:       log.With("service", "QuizService"),
	}
}

func (s *QuizService) Generate(ctx context.Context, studentID int64, noteID string) ([]*domain.Quiz, error) {
	note, text, err := noteText(ctx, s.notes, studentID, noteID)
	if err != nil {
		return nil, err
	}

	drafts, err := s.generator.Quiz(ctx, text)
	if err != nil {
		s.log.Warn("quiz generation failed", "note_id", note.ID, "error", err)
		return nil, err
	}
	if len(drafts) > MaxStudyItemsPerNote {
		drafts = drafts[:MaxStudyItemsPerNote]
	}

	existing, err := s.quizzes.ListByNote(ctx, note.ID)
	if err != nil {
		return nil, err
	}

	if n := overflow(len(existing), len(drafts)); n > 0 {
		ids := make([]string, 0, n)
		for _, q := range existing[:n] {
			ids = append(ids, q.ID)
		}
		if err := s.quizzes.DeleteMany(ctx, ids); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	quizzes := make([]*domain.Quiz, 0, len(drafts))
	for i, d := range drafts {
		quizzes = append(quizzes, &domain.Quiz{
			ID:           uuid.New().String(),
			NoteID:       note.ID,
			Question:     d.Question,
			Options:      d.Options,
			CorrectIndex: *d.CorrectIndex,
			CreatedAt:    now.Add(time.Duration(i)),
		})
	}

	if err := s.quizzes.CreateMany(ctx, quizzes); err != nil {
		return nil, err
	}

	return quizzes, nil
}

func (s *QuizService) ListByNote(ctx context.Context, studentID int64, noteID string) ([]*domain.Quiz, error) {
	if _, err := ownedNote(ctx, s.notes, studentID, noteID); err != nil {
		return nil, err
	}
	return s.quizzes.ListByNote(ctx, noteID)
}

// SubmitExam stores the latest score for the note and reports the score it
// replaced, if any.
func (s *QuizService) SubmitExam(ctx context.Context, studentID int64, req *domain.SubmitExamRequest) (*domain.ExamSubmission, error) {
	if _, err := ownedNote(ctx, s.notes, studentID, req.NoteID); err != nil {
		return nil, err
	}

	var previous *int
	prev, err := s.results.Get(ctx, req.NoteID)
	switch {
	case err == nil:
		score := prev.Score
		previous = &score
	case !errors.Is(err, repository.ErrExamResultNotFound):
		return nil, err
	}

	result := &domain.ExamResult{
		NoteID:    req.NoteID,
		Score:     *req.Score,
		UpdatedAt: time.Now(),
	}

	if err := s.results.Upsert(ctx, result); err != nil {
		return nil, err
	}

	return &domain.ExamSubmission{
		Result:        result,
		PreviousScore: previous,
		CurrentScore:  result.Score,
	}, nil
}
