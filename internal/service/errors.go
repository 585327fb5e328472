package service

import (
	"errors"

	"lesson-notes-server/internal/ai"
	"lesson-notes-server/internal/repository"
)

var (
	ErrNoteNotFound      = repository.ErrNoteNotFound
	ErrFolderNotFound    = repository.ErrFolderNotFound
	ErrAccessDenied      = errors.New("access denied")
	ErrFolderNotEmpty    = errors.New("folder is not empty")
	ErrContentTooShort   = errors.New("note content is too short or empty")
	ErrInvalidAIResponse = ai.ErrInvalidResponse
)
