package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lesson-notes-server/internal/document"
	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/repository"

	"github.com/google/uuid"
)

type ReuseStatus string

const (
	StatusCreatedNoPrevious         ReuseStatus = "created_no_previous"
	StatusReusedEmpty               ReuseStatus = "reused_empty"
	StatusCreatedPreviousHadContent ReuseStatus = "created_previous_had_content"
)

func (s ReuseStatus) Message() string {
	switch s {
	case StatusCreatedNoPrevious:
		return "No previous note. Created new note."
	case StatusReusedEmpty:
		return "Reused empty note and updated timestamp & title."
	case StatusCreatedPreviousHadContent:
		return "Previous note had content. Created new note."
	}
	return ""
}

type ReuseResult struct {
	Note    *domain.Note
	Created bool
	Status  ReuseStatus
}

// NoteReuseResolver hands a widget the note for its lesson. The latest note
// for the identity is reused while it is still a blank editor, otherwise a
// new note is created. Calls for the same identity are serialized within
// this process.
type NoteReuseResolver struct {
	repo  repository.NoteRepository
	locks *identityLocks
	now   func() time.Time
}

func NewNoteReuseResolver(repo repository.NoteRepository) *NoteReuseResolver {
	return &NoteReuseResolver{
		repo:  repo,
		locks: newIdentityLocks(),
		now:   time.Now,
	}
}

func (r *NoteReuseResolver) Resolve(ctx context.Context, identity domain.Identity, fields domain.NoteFields) (*ReuseResult, error) {
	unlock := r.locks.lock(identity)
	defer unlock()

	latest, err := r.repo.FindLatestByIdentity(ctx, identity)
	if err != nil {
		if !errors.Is(err, repository.ErrNoteNotFound) {
			return nil, fmt.Errorf("lookup latest note: %w", err)
		}
		return r.create(ctx, identity, fields, StatusCreatedNoPrevious)
	}

	if !document.IsBlank(document.Parse(latest.Content)) {
		return r.create(ctx, identity, fields, StatusCreatedPreviousHadContent)
	}

	note, err := r.repo.Touch(ctx, latest.ID, fields.Title)
	if err != nil {
		return nil, fmt.Errorf("reuse note %s: %w", latest.ID, err)
	}

	return &ReuseResult{Note: note, Created: false, Status: StatusReusedEmpty}, nil
}

func (r *NoteReuseResolver) create(ctx context.Context, identity domain.Identity, fields domain.NoteFields, status ReuseStatus) (*ReuseResult, error) {
	note := newNote(identity, fields, r.now())

	if err := r.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	return &ReuseResult{Note: note, Created: true, Status: status}, nil
}

// newNote builds a note for the identity. Missing content becomes the blank
// editor document so the note can be reused until the student writes in it.
func newNote(identity domain.Identity, fields domain.NoteFields, now time.Time) *domain.Note {
	note := &domain.Note{
		ID:          uuid.New().String(),
		StudentID:   identity.StudentID,
		CourseID:    identity.CourseID,
		UnitNumber:  identity.UnitNumber,
		LessonTitle: identity.LessonTitle,
		Content:     fields.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if fields.Title != nil {
		note.Title = *fields.Title
	}
	if len(note.Content) == 0 || string(note.Content) == "null" {
		note.Content = document.BlankJSON
	}

	return note
}
