package service

import (
	"context"
	"time"

	"lesson-notes-server/internal/cache"
	"lesson-notes-server/internal/document"
	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/export"
	"lesson-notes-server/internal/repository"
	"lesson-notes-server/internal/websocket"
	"lesson-notes-server/pkg/logger"
)

// NoteBroadcaster pushes note changes to a student's other open widgets.
type NoteBroadcaster interface {
	BroadcastToStudent(studentID int64, message *websocket.Message, excludeInstanceID string) error
}

type NoteService struct {
	repo        repository.NoteRepository
	resolver    *NoteReuseResolver
	listCache   cache.NoteListCache
	renderer    *document.Renderer
	pdf         export.PDFRenderer
	broadcaster NoteBroadcaster
	log         *logger.Logger
}

func NewNoteService(
	repo repository.NoteRepository,
	resolver *NoteReuseResolver,
	listCache cache.NoteListCache,
	renderer *document.Renderer,
	pdf export.PDFRenderer,
	broadcaster NoteBroadcaster,
	log *logger.Logger,
) *NoteService {
	if listCache == nil {
		listCache = cache.NoopNoteListCache{}
	}
	return &NoteService{
		repo:        repo,
		resolver:    resolver,
		listCache:   listCache,
		renderer:    renderer,
		pdf:         pdf,
		broadcaster: broadcaster,
		log:         log.With("service", "NoteService"),
	}
}

func (s *NoteService) GetOrCreate(ctx context.Context, identity domain.Identity, instanceID string, req *domain.GetOrCreateNoteRequest) (*ReuseResult, error) {
	result, err := s.resolver.Resolve(ctx, identity, domain.NoteFields{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return nil, err
	}

	s.listCache.Invalidate(ctx, identity.StudentID, identity.CourseID)
	s.broadcastUpdate(result.Note, instanceID)

	s.log.Debug("note resolved", "note_id", result.Note.ID, "status", string(result.Status))

	return result, nil
}

func (s *NoteService) Create(ctx context.Context, identity domain.Identity, instanceID string, req *domain.CreateNoteRequest) (*domain.Note, error) {
	note := newNote(identity, domain.NoteFields{Title: &req.Title, Content: req.Content}, time.Now())

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.listCache.Invalidate(ctx, note.StudentID, note.CourseID)
	s.broadcastUpdate(note, instanceID)

	return note, nil
}

// List returns the notes of the exact identity tuple, newest first.
func (s *NoteService) List(ctx context.Context, identity domain.Identity) ([]*domain.Note, error) {
	return s.repo.ListByIdentity(ctx, identity)
}

// ListByCourse returns every note of the student in the course. The list is
// cached and invalidated by writes.
func (s *NoteService) ListByCourse(ctx context.Context, studentID, courseID int64) ([]*domain.Note, error) {
	return s.listCache.GetOrLoad(ctx, studentID, courseID, func(ctx context.Context) ([]*domain.Note, error) {
		return s.repo.ListByStudentCourse(ctx, studentID, courseID)
	})
}

func (s *NoteService) Get(ctx context.Context, studentID int64, noteID string) (*domain.Note, error) {
	return ownedNote(ctx, s.repo, studentID, noteID)
}

func (s *NoteService) Update(ctx context.Context, studentID int64, instanceID, noteID string, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	note, err := ownedNote(ctx, s.repo, studentID, noteID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = req.Content
	}
	note.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}

	s.listCache.Invalidate(ctx, note.StudentID, note.CourseID)
	s.broadcastUpdate(note, instanceID)

	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, studentID int64, instanceID, noteID string) error {
	note, err := ownedNote(ctx, s.repo, studentID, noteID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, noteID); err != nil {
		return err
	}

	s.listCache.Invalidate(ctx, note.StudentID, note.CourseID)

	if s.broadcaster != nil {
		msg, err := websocket.NewMessage(websocket.TypeNoteDelete, &websocket.NoteDeletePayload{
			NoteID:     noteID,
			InstanceID: instanceID,
		})
		if err == nil {
			err = s.broadcaster.BroadcastToStudent(studentID, msg, instanceID)
		}
		if err != nil {
			s.log.Warn("note delete broadcast failed", "note_id", noteID, "error", err)
		}
	}

	return nil
}

func (s *NoteService) ExportWord(ctx context.Context, studentID int64, noteID string) (*export.File, error) {
	note, err := ownedNote(ctx, s.repo, studentID, noteID)
	if err != nil {
		return nil, err
	}

	body := s.renderer.HTML(document.Parse(note.Content))

	return &export.File{
		Name:        export.WordFilename(note.ID),
		ContentType: export.WordContentType,
		Data:        export.WordDocument(body),
	}, nil
}

func (s *NoteService) ExportPDF(ctx context.Context, studentID int64, noteID string) (*export.File, error) {
	note, err := ownedNote(ctx, s.repo, studentID, noteID)
	if err != nil {
		return nil, err
	}

	body := s.renderer.HTML(document.Parse(note.Content))

	data, err := s.pdf.RenderPDF(ctx, export.PDFDocument(note.Title, body))
	if err != nil {
		s.log.Error("pdf export failed", "note_id", note.ID, "error", err)
		return nil, err
	}

	return &export.File{
		Name:        export.PDFFilename(note.ID),
		ContentType: export.PDFContentType,
		Data:        data,
		Inline:      true,
	}, nil
}

func (s *NoteService) broadcastUpdate(note *domain.Note, instanceID string) {
	if s.broadcaster == nil {
		return
	}

	msg, err := websocket.NewMessage(websocket.TypeNoteUpdate, &websocket.NoteUpdatePayload{
		NoteID:      note.ID,
		CourseID:    note.CourseID,
		UnitNumber:  note.UnitNumber,
		LessonTitle: note.LessonTitle,
		FolderID:    note.FolderID,
		Title:       note.Title,
		Content:     note.Content,
		UpdatedAt:   note.UpdatedAt,
		InstanceID:  instanceID,
	})
	if err == nil {
		err = s.broadcaster.BroadcastToStudent(note.StudentID, msg, instanceID)
	}
	if err != nil {
		s.log.Warn("note update broadcast failed", "note_id", note.ID, "error", err)
	}
}

// ownedNote loads a live note and checks it belongs to the student.
func ownedNote(ctx context.Context, repo repository.NoteRepository, studentID int64, noteID string) (*domain.Note, error) {
	note, err := repo.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if note.StudentID != studentID {
		return nil, ErrAccessDenied
	}

	return note, nil
}
