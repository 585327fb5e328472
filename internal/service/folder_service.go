package service

import (
	"context"
	"time"

	"lesson-notes-server/internal/cache"
	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/repository"

	"github.com/google/uuid"
)

type FolderService struct {
	folders   repository.FolderRepository
	notes     repository.NoteRepository
	listCache cache.NoteListCache
}

func NewFolderService(folders repository.FolderRepository, notes repository.NoteRepository, listCache cache.NoteListCache) *FolderService {
	if listCache == nil {
		listCache = cache.NoopNoteListCache{}
	}
	return &FolderService{
		folders:   folders,
		notes:     notes,
		listCache: listCache,
	}
}

// List returns the student's folders in the course, each with the notes
// filed in it.
func (s *FolderService) List(ctx context.Context, studentID, courseID int64) ([]*domain.FolderWithNotes, error) {
	folders, err := s.folders.ListByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.FolderWithNotes, 0, len(folders))
	for _, f := range folders {
		notes, err := s.notes.ListByFolder(ctx, f.ID)
		if err != nil {
			return nil, err
		}

		owned := make([]*domain.Note, 0, len(notes))
		for _, n := range notes {
			if n.StudentID == studentID && n.CourseID == courseID {
				owned = append(owned, n)
			}
		}

		result = append(result, &domain.FolderWithNotes{Folder: f, Notes: owned})
	}

	return result, nil
}

func (s *FolderService) Create(ctx context.Context, studentID, courseID int64, req *domain.CreateFolderRequest) (*domain.Folder, error) {
	now := time.Now()
	folder := &domain.Folder{
		ID:        uuid.New().String(),
		StudentID: studentID,
		CourseID:  courseID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

func (s *FolderService) Rename(ctx context.Context, studentID int64, folderID string, req *domain.RenameFolderRequest) (*domain.Folder, error) {
	folder, err := s.owned(ctx, studentID, folderID)
	if err != nil {
		return nil, err
	}

	folder.Name = req.Name
	folder.UpdatedAt = time.Now()

	if err := s.folders.Update(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// Delete removes the folder only when no live note is filed in it.
func (s *FolderService) Delete(ctx context.Context, studentID int64, folderID string) error {
	if _, err := s.owned(ctx, studentID, folderID); err != nil {
		return err
	}

	notes, err := s.notes.ListByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if len(notes) > 0 {
		return ErrFolderNotEmpty
	}

	return s.folders.Delete(ctx, folderID)
}

// MoveNote files the note into the folder, or takes it out of any folder
// when FolderID is nil.
func (s *FolderService) MoveNote(ctx context.Context, studentID int64, req *domain.MoveNoteRequest) (*domain.Note, error) {
	note, err := ownedNote(ctx, s.notes, studentID, req.NoteID)
	if err != nil {
		return nil, err
	}

	if req.FolderID != nil {
		folder, err := s.owned(ctx, studentID, *req.FolderID)
		if err != nil {
			return nil, err
		}
		if folder.CourseID != note.CourseID {
			return nil, ErrAccessDenied
		}
	}

	note.FolderID = req.FolderID
	note.UpdatedAt = time.Now()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.listCache.Invalidate(ctx, note.StudentID, note.CourseID)

	return note, nil
}

func (s *FolderService) owned(ctx context.Context, studentID int64, folderID string) (*domain.Folder, error) {
	folder, err := s.folders.Get(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if folder.StudentID != studentID {
		return nil, ErrAccessDenied
	}

	return folder, nil
}
