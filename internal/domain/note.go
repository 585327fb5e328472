package domain

import (
	"encoding/json"
	"time"
)

// Identity is the lesson context a note belongs to. Unit and lesson are
// optional and a nil value only matches notes stored without one.
type Identity struct {
	StudentID   int64   `json:"student_id"`
	CourseID    int64   `json:"course_id"`
	UnitNumber  *int    `json:"unit_number"`
	LessonTitle *string `json:"lesson_title"`
}

type Note struct {
	ID          string          `json:"id"`
	StudentID   int64           `json:"student_id"`
	CourseID    int64           `json:"course_id"`
	UnitNumber  *int            `json:"unit_number"`
	LessonTitle *string         `json:"lesson_title"`
	FolderID    *string         `json:"folder_id"`
	Title       string          `json:"title"`
	Content     json.RawMessage `json:"content"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	IsDeleted   bool            `json:"-"`
}

func (n *Note) Identity() Identity {
	return Identity{
		StudentID:   n.StudentID,
		CourseID:    n.CourseID,
		UnitNumber:  n.UnitNumber,
		LessonTitle: n.LessonTitle,
	}
}

// NoteFields are the client supplied fields merged into a new note.
type NoteFields struct {
	Title   *string
	Content json.RawMessage
}

type CreateNoteRequest struct {
	Title   string          `json:"title" validate:"max=255"`
	Content json.RawMessage `json:"content"`
}

type GetOrCreateNoteRequest struct {
	Title   *string         `json:"title" validate:"omitempty,max=255"`
	Content json.RawMessage `json:"content"`
}

type UpdateNoteRequest struct {
	Title   *string         `json:"title" validate:"omitempty,max=255"`
	Content json.RawMessage `json:"content"`
}

type MoveNoteRequest struct {
	NoteID   string  `json:"note_id" validate:"required"`
	FolderID *string `json:"folder_id"`
}
