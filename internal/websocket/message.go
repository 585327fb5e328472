package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeNoteUpdate MessageType = "note_update"
	TypeNoteDelete MessageType = "note_delete"
	TypePing       MessageType = "ping"
	TypePong       MessageType = "pong"
	TypeError      MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NoteUpdatePayload is pushed to the other widget instances of a student
// when a note is created or changed.
type NoteUpdatePayload struct {
	NoteID      string          `json:"note_id"`
	CourseID    int64           `json:"course_id"`
	UnitNumber  *int            `json:"unit_number"`
	LessonTitle *string         `json:"lesson_title"`
	FolderID    *string         `json:"folder_id"`
	Title       string          `json:"title"`
	Content     json.RawMessage `json:"content"`
	UpdatedAt   time.Time       `json:"updated_at"`
	InstanceID  string          `json:"instance_id"`
}

type NoteDeletePayload struct {
	NoteID     string `json:"note_id"`
	InstanceID string `json:"instance_id"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
