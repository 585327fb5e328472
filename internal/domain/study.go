package domain

import "time"

type Flashcard struct {
	ID        string    `json:"id"`
	NoteID    string    `json:"note_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type Quiz struct {
	ID           string    `json:"id"`
	NoteID       string    `json:"note_id"`
	Question     string    `json:"question"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	CreatedAt    time.Time `json:"created_at"`
}

type ExamResult struct {
	NoteID    string    `json:"note_id"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GenerateRequest struct {
	NoteID string `json:"note_id" validate:"required"`
	Count  int    `json:"count" validate:"omitempty,min=1,max=20"`
}

type SubmitExamRequest struct {
	NoteID string `json:"note_id" validate:"required"`
	Score  *int   `json:"score" validate:"required,min=0,max=100"`
}

type ExamSubmission struct {
	Result        *ExamResult `json:"data"`
	PreviousScore *int        `json:"previous_score"`
	CurrentScore  int         `json:"current_score"`
}
