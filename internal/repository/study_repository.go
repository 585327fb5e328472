package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lesson-notes-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrExamResultNotFound = errors.New("exam result not found")

// FlashcardRepository stores generated flashcards. ListByNote returns them
// oldest first.
type FlashcardRepository interface {
	CreateMany(ctx context.Context, cards []*domain.Flashcard) error
	ListByNote(ctx context.Context, noteID string) ([]*domain.Flashcard, error)
	DeleteMany(ctx context.Context, ids []string) error
}

// QuizRepository stores generated quiz questions. ListByNote returns them
// oldest first.
type QuizRepository interface {
	CreateMany(ctx context.Context, quizzes []*domain.Quiz) error
	ListByNote(ctx context.Context, noteID string) ([]*domain.Quiz, error)
	DeleteMany(ctx context.Context, ids []string) error
}

type ExamResultRepository interface {
	Get(ctx context.Context, noteID string) (*domain.ExamResult, error)
	Upsert(ctx context.Context, result *domain.ExamResult) error
}

type flashcardDoc struct {
	ID        string `json:"_id"`
	Rev       string `json:"_rev,omitempty"`
	DocType   string `json:"doc_type"`
	NoteID    string `json:"note_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

type quizDoc struct {
	ID           string   `json:"_id"`
	Rev          string   `json:"_rev,omitempty"`
	DocType      string   `json:"doc_type"`
	NoteID       string   `json:"note_id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	CreatedAt    string   `json:"created_at"`
}

type examResultDoc struct {
	ID        string `json:"_id"`
	Rev       string `json:"_rev,omitempty"`
	DocType   string `json:"doc_type"`
	NoteID    string `json:"note_id"`
	Score     int    `json:"score"`
	UpdatedAt string `json:"updated_at"`
}

// studyDoc is the part of a flashcard or quiz document needed to delete it.
type studyDoc struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev"`
}

type CouchDBStudyRepository struct {
	db *kivik.DB
}

// NewStudyRepository returns a repository serving flashcards, quizzes and
// exam results from the same database.
func NewStudyRepository(client *kivik.Client, dbName string) *CouchDBStudyRepository {
	return &CouchDBStudyRepository{
		db: client.DB(dbName),
	}
}

func (r *CouchDBStudyRepository) Flashcards() FlashcardRepository {
	return &couchFlashcards{r}
}

func (r *CouchDBStudyRepository) Quizzes() QuizRepository {
	return &couchQuizzes{r}
}

func (r *CouchDBStudyRepository) ExamResults() ExamResultRepository {
	return &couchExamResults{r}
}

func byNoteQuery(docType, noteID string) map[string]interface{} {
	return map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":   docType,
			"note_id":    noteID,
			"created_at": map[string]interface{}{"$gt": nil},
		},
		"sort":      sortBy("asc", "doc_type", "note_id", "created_at"),
		"use_index": useIndex(indexByNote),
	}
}

func (r *CouchDBStudyRepository) bulkPut(ctx context.Context, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}

	results, err := r.db.BulkDocs(ctx, docs)
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.Error != nil {
			return fmt.Errorf("document %s: %w", res.ID, res.Error)
		}
	}

	return nil
}

func (r *CouchDBStudyRepository) deleteMany(ctx context.Context, prefix string, ids []string) error {
	docs := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		var doc studyDoc
		if err := r.db.Get(ctx, prefix+id).ScanDoc(&doc); err != nil {
			if isNotFound(err) {
				continue
			}
			return err
		}
		docs = append(docs, map[string]interface{}{
			"_id":      doc.ID,
			"_rev":     doc.Rev,
			"_deleted": true,
		})
	}

	return r.bulkPut(ctx, docs)
}

type couchFlashcards struct {
	*CouchDBStudyRepository
}

func (r *couchFlashcards) CreateMany(ctx context.Context, cards []*domain.Flashcard) error {
	docs := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		docs = append(docs, flashcardDoc{
			ID:        "flashcard:" + c.ID,
			DocType:   docTypeFlashcard,
			NoteID:    c.NoteID,
			Question:  c.Question,
			Answer:    c.Answer,
			CreatedAt: formatTime(c.CreatedAt),
		})
	}

	if err := r.bulkPut(ctx, docs); err != nil {
		return fmt.Errorf("failed to create flashcards: %w", err)
	}

	return nil
}

func (r *couchFlashcards) ListByNote(ctx context.Context, noteID string) ([]*domain.Flashcard, error) {
	docs, err := findDocs[flashcardDoc](ctx, r.db, byNoteQuery(docTypeFlashcard, noteID))
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}

	cards := make([]*domain.Flashcard, 0, len(docs))
	for _, doc := range docs {
		createdAt, err := parseTime(doc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		cards = append(cards, &domain.Flashcard{
			ID:        strings.TrimPrefix(doc.ID, "flashcard:"),
			NoteID:    doc.NoteID,
			Question:  doc.Question,
			Answer:    doc.Answer,
			CreatedAt: createdAt,
		})
	}

	return cards, nil
}

func (r *couchFlashcards) DeleteMany(ctx context.Context, ids []string) error {
	if err := r.deleteMany(ctx, "flashcard:", ids); err != nil {
		return fmt.Errorf("failed to delete flashcards: %w", err)
	}
	return nil
}

type couchQuizzes struct {
	*CouchDBStudyRepository
}

func (r *couchQuizzes) CreateMany(ctx context.Context, quizzes []*domain.Quiz) error {
	docs := make([]interface{}, 0, len(quizzes))
	for _, q := range quizzes {
		docs = append(docs, quizDoc{
			ID:           "quiz:" + q.ID,
			DocType:      docTypeQuiz,
			NoteID:       q.NoteID,
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			CreatedAt:    formatTime(q.CreatedAt),
		})
	}

	if err := r.bulkPut(ctx, docs); err != nil {
		return fmt.Errorf("failed to create quizzes: %w", err)
	}

	return nil
}

func (r *couchQuizzes) ListByNote(ctx context.Context, noteID string) ([]*domain.Quiz, error) {
	docs, err := findDocs[quizDoc](ctx, r.db, byNoteQuery(docTypeQuiz, noteID))
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(docs))
	for _, doc := range docs {
		createdAt, err := parseTime(doc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		quizzes = append(quizzes, &domain.Quiz{
			ID:           strings.TrimPrefix(doc.ID, "quiz:"),
			NoteID:       doc.NoteID,
			Question:     doc.Question,
			Options:      doc.Options,
			CorrectIndex: doc.CorrectIndex,
			CreatedAt:    createdAt,
		})
	}

	return quizzes, nil
}

func (r *couchQuizzes) DeleteMany(ctx context.Context, ids []string) error {
	if err := r.deleteMany(ctx, "quiz:", ids); err != nil {
		return fmt.Errorf("failed to delete quizzes: %w", err)
	}
	return nil
}

type couchExamResults struct {
	*CouchDBStudyRepository
}

func examResultDocID(noteID string) string {
	return "exam_result:" + noteID
}

func (r *couchExamResults) Get(ctx context.Context, noteID string) (*domain.ExamResult, error) {
	var doc examResultDoc
	if err := r.db.Get(ctx, examResultDocID(noteID)).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, ErrExamResultNotFound
		}
		return nil, fmt.Errorf("failed to get exam result: %w", err)
	}

	updatedAt, err := parseTime(doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &domain.ExamResult{
		NoteID:    doc.NoteID,
		Score:     doc.Score,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *couchExamResults) Upsert(ctx context.Context, result *domain.ExamResult) error {
	doc := examResultDoc{
		ID:        examResultDocID(result.NoteID),
		DocType:   docTypeExamResult,
		NoteID:    result.NoteID,
		Score:     result.Score,
		UpdatedAt: formatTime(result.UpdatedAt),
	}

	var existing examResultDoc
	err := r.db.Get(ctx, doc.ID).ScanDoc(&existing)
	switch {
	case err == nil:
		doc.Rev = existing.Rev
	case !isNotFound(err):
		return fmt.Errorf("failed to read exam result: %w", err)
	}

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save exam result: %w", err)
	}

	return nil
}

