package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lesson-notes-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrNoteNotFound = errors.New("note not found")

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// FindLatestByIdentity returns the most recently created live note for
	// the exact identity, or ErrNoteNotFound.
	FindLatestByIdentity(ctx context.Context, identity domain.Identity) (*domain.Note, error)
	ListByIdentity(ctx context.Context, identity domain.Identity) ([]*domain.Note, error)
	ListByStudentCourse(ctx context.Context, studentID, courseID int64) ([]*domain.Note, error)
	ListByFolder(ctx context.Context, folderID string) ([]*domain.Note, error)
	// Touch bumps updated_at and, when title is non-nil, replaces the title.
	Touch(ctx context.Context, id string, title *string) (*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
}

type noteDoc struct {
	ID          string          `json:"_id"`
	Rev         string          `json:"_rev,omitempty"`
	DocType     string          `json:"doc_type"`
	StudentID   int64           `json:"student_id"`
	CourseID    int64           `json:"course_id"`
	UnitNumber  *int            `json:"unit_number"`
	LessonTitle *string         `json:"lesson_title"`
	FolderID    *string         `json:"folder_id"`
	Title       string          `json:"title"`
	Content     json.RawMessage `json:"content"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	DeletedAt   *string         `json:"deleted_at"`
	IsDeleted   bool            `json:"is_deleted"`
}

type CouchDBNoteRepository struct {
	db *kivik.DB
}

func NewNoteRepository(client *kivik.Client, dbName string) *CouchDBNoteRepository {
	return &CouchDBNoteRepository{
		db: client.DB(dbName),
	}
}

func noteDocID(id string) string {
	return fmt.Sprintf("note:%s", id)
}

func (r *CouchDBNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	doc := noteToDoc(note)

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *CouchDBNoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.IsDeleted {
		return nil, ErrNoteNotFound
	}

	return docToNote(doc)
}

func (r *CouchDBNoteRepository) FindLatestByIdentity(ctx context.Context, identity domain.Identity) (*domain.Note, error) {
	query := map[string]interface{}{
		"selector":  identitySelector(identity),
		"sort":      sortBy("desc", "doc_type", "student_id", "course_id", "created_at"),
		"use_index": useIndex(indexByOwner),
		"limit":     1,
	}

	docs, err := findDocs[noteDoc](ctx, r.db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest note: %w", err)
	}

	if len(docs) == 0 {
		return nil, ErrNoteNotFound
	}

	return docToNote(&docs[0])
}

func (r *CouchDBNoteRepository) ListByIdentity(ctx context.Context, identity domain.Identity) ([]*domain.Note, error) {
	return r.list(ctx, identityQuery(identity))
}

func (r *CouchDBNoteRepository) ListByStudentCourse(ctx context.Context, studentID, courseID int64) ([]*domain.Note, error) {
	return r.list(ctx, studentCourseQuery(studentID, courseID))
}

func (r *CouchDBNoteRepository) ListByFolder(ctx context.Context, folderID string) ([]*domain.Note, error) {
	return r.list(ctx, folderNotesQuery(folderID))
}

func (r *CouchDBNoteRepository) Touch(ctx context.Context, id string, title *string) (*domain.Note, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		doc.Title = *title
	}
	doc.UpdatedAt = formatTime(time.Now())

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return nil, fmt.Errorf("failed to touch note: %w", err)
	}

	return docToNote(doc)
}

func (r *CouchDBNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	existing, err := r.get(ctx, note.ID)
	if err != nil {
		return err
	}

	doc := noteToDoc(note)
	doc.Rev = existing.Rev
	doc.CreatedAt = existing.CreatedAt

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

// Delete soft deletes the note. The document stays in the database with
// is_deleted set so it no longer matches any query.
func (r *CouchDBNoteRepository) Delete(ctx context.Context, id string) error {
	doc, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	now := formatTime(time.Now())
	doc.IsDeleted = true
	doc.DeletedAt = &now
	doc.UpdatedAt = now

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}

func (r *CouchDBNoteRepository) get(ctx context.Context, id string) (*noteDoc, error) {
	var doc noteDoc
	if err := r.db.Get(ctx, noteDocID(id)).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	return &doc, nil
}

func (r *CouchDBNoteRepository) list(ctx context.Context, query map[string]interface{}) ([]*domain.Note, error) {
	docs, err := findDocs[noteDoc](ctx, r.db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]*domain.Note, 0, len(docs))
	for i := range docs {
		note, err := docToNote(&docs[i])
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	return notes, nil
}

func identityQuery(identity domain.Identity) map[string]interface{} {
	return map[string]interface{}{
		"selector":  identitySelector(identity),
		"sort":      sortBy("desc", "doc_type", "student_id", "course_id", "created_at"),
		"use_index": useIndex(indexByOwner),
	}
}

func studentCourseQuery(studentID, courseID int64) map[string]interface{} {
	return map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":   docTypeNote,
			"student_id": studentID,
			"course_id":  courseID,
			"created_at": map[string]interface{}{"$gt": nil},
			"is_deleted": false,
		},
		"sort":      sortBy("desc", "doc_type", "student_id", "course_id", "created_at"),
		"use_index": useIndex(indexByOwner),
	}
}

func folderNotesQuery(folderID string) map[string]interface{} {
	return map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":   docTypeNote,
			"folder_id":  folderID,
			"created_at": map[string]interface{}{"$gt": nil},
			"is_deleted": false,
		},
		"sort":      sortBy("desc", "doc_type", "folder_id", "created_at"),
		"use_index": useIndex(indexByFolder),
	}
}

// identitySelector matches unit and lesson exactly, so a nil value only
// matches documents where the field is null.
func identitySelector(identity domain.Identity) map[string]interface{} {
	return map[string]interface{}{
		"doc_type":     docTypeNote,
		"student_id":   identity.StudentID,
		"course_id":    identity.CourseID,
		"unit_number":  identity.UnitNumber,
		"lesson_title": identity.LessonTitle,
		"created_at":   map[string]interface{}{"$gt": nil},
		"is_deleted":   false,
	}
}

func noteToDoc(note *domain.Note) *noteDoc {
	return &noteDoc{
		ID:          noteDocID(note.ID),
		DocType:     docTypeNote,
		StudentID:   note.StudentID,
		CourseID:    note.CourseID,
		UnitNumber:  note.UnitNumber,
		LessonTitle: note.LessonTitle,
		FolderID:    note.FolderID,
		Title:       note.Title,
		Content:     note.Content,
		CreatedAt:   formatTime(note.CreatedAt),
		UpdatedAt:   formatTime(note.UpdatedAt),
		IsDeleted:   note.IsDeleted,
	}
}

func docToNote(doc *noteDoc) (*domain.Note, error) {
	createdAt, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	updatedAt, err := parseTime(doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &domain.Note{
		ID:          strings.TrimPrefix(doc.ID, "note:"),
		StudentID:   doc.StudentID,
		CourseID:    doc.CourseID,
		UnitNumber:  doc.UnitNumber,
		LessonTitle: doc.LessonTitle,
		FolderID:    doc.FolderID,
		Title:       doc.Title,
		Content:     doc.Content,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		IsDeleted:   doc.IsDeleted,
	}, nil
}
