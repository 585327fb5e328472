package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"lesson-notes-server/internal/ai"
	"lesson-notes-server/internal/cache"
	"lesson-notes-server/internal/domain"
	"lesson-notes-server/internal/repository"
	"lesson-notes-server/internal/websocket"
)

type mockNoteRepo struct {
	mu      sync.Mutex
	notes   map[string]*domain.Note
	order   []string
	creates int
	findErr error
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{
		notes: make(map[string]*domain.Note),
	}
}

func copyNote(n *domain.Note) *domain.Note {
	c := *n
	return &c
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.ID] = copyNote(note)
	m.order = append(m.order, note.ID)
	m.creates++
	return nil
}

func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, exists := m.notes[id]; exists && !n.IsDeleted {
		return copyNote(n), nil
	}
	return nil, repository.ErrNoteNotFound
}

func (m *mockNoteRepo) FindLatestByIdentity(ctx context.Context, identity domain.Identity) (*domain.Note, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	notes, _ := m.ListByIdentity(ctx, identity)
	if len(notes) == 0 {
		return nil, repository.ErrNoteNotFound
	}
	return notes[0], nil
}

// filter returns matching live notes, newest first.
func (m *mockNoteRepo) filter(match func(n *domain.Note) bool) []*domain.Note {
	m.mu.Lock()
	defer m.mu.Unlock()

	var notes []*domain.Note
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.notes[m.order[i]]
		if !n.IsDeleted && match(n) {
			notes = append(notes, copyNote(n))
		}
	}
	return notes
}

func (m *mockNoteRepo) ListByIdentity(ctx context.Context, identity domain.Identity) ([]*domain.Note, error) {
	return m.filter(func(n *domain.Note) bool {
		return n.StudentID == identity.StudentID &&
			n.CourseID == identity.CourseID &&
			sameInt(n.UnitNumber, identity.UnitNumber) &&
			sameString(n.LessonTitle, identity.LessonTitle)
	}), nil
}

func (m *mockNoteRepo) ListByStudentCourse(ctx context.Context, studentID, courseID int64) ([]*domain.Note, error) {
	return m.filter(func(n *domain.Note) bool {
		return n.StudentID == studentID && n.CourseID == courseID
	}), nil
}

func (m *mockNoteRepo) ListByFolder(ctx context.Context, folderID string) ([]*domain.Note, error) {
	return m.filter(func(n *domain.Note) bool {
		return n.FolderID != nil && *n.FolderID == folderID
	}), nil
}

func (m *mockNoteRepo) Touch(ctx context.Context, id string, title *string) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, exists := m.notes[id]
	if !exists {
		return nil, repository.ErrNoteNotFound
	}
	if title != nil {
		n.Title = *title
	}
	n.UpdatedAt = time.Now()
	return copyNote(n), nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.notes[note.ID]; exists {
		m.notes[note.ID] = copyNote(note)
		return nil
	}
	return repository.ErrNoteNotFound
}

func (m *mockNoteRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, exists := m.notes[id]; exists {
		n.IsDeleted = true
		return nil
	}
	return repository.ErrNoteNotFound
}

// setContent simulates the student typing into a stored note.
func (m *mockNoteRepo) setContent(id, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[id].Content = json.RawMessage(content)
}

type mockFolderRepo struct {
	folders map[string]*domain.Folder
}

func newMockFolderRepo() *mockFolderRepo {
	return &mockFolderRepo{folders: make(map[string]*domain.Folder)}
}

func (m *mockFolderRepo) Create(ctx context.Context, folder *domain.Folder) error {
	c := *folder
	m.folders[folder.ID] = &c
	return nil
}

func (m *mockFolderRepo) Get(ctx context.Context, id string) (*domain.Folder, error) {
	if f, ok := m.folders[id]; ok {
		c := *f
		return &c, nil
	}
	return nil, repository.ErrFolderNotFound
}

func (m *mockFolderRepo) ListByStudentCourse(ctx context.Context, studentID, courseID int64) ([]*domain.Folder, error) {
	var folders []*domain.Folder
	for _, f := range m.folders {
		if f.StudentID == studentID && f.CourseID == courseID {
			c := *f
			folders = append(folders, &c)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].CreatedAt.Before(folders[j].CreatedAt) })
	return folders, nil
}

func (m *mockFolderRepo) Update(ctx context.Context, folder *domain.Folder) error {
	if _, ok := m.folders[folder.ID]; !ok {
		return repository.ErrFolderNotFound
	}
	c := *folder
	m.folders[folder.ID] = &c
	return nil
}

func (m *mockFolderRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.folders[id]; !ok {
		return repository.ErrFolderNotFound
	}
	delete(m.folders, id)
	return nil
}

type mockFlashcardRepo struct {
	cards []*domain.Flashcard
}

func (m *mockFlashcardRepo) CreateMany(ctx context.Context, cards []*domain.Flashcard) error {
	m.cards = append(m.cards, cards...)
	return nil
}

func (m *mockFlashcardRepo) ListByNote(ctx context.Context, noteID string) ([]*domain.Flashcard, error) {
	var cards []*domain.Flashcard
	for _, c := range m.cards {
		if c.NoteID == noteID {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

func (m *mockFlashcardRepo) DeleteMany(ctx context.Context, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.cards[:0]
	for _, c := range m.cards {
		if !drop[c.ID] {
			kept = append(kept, c)
		}
	}
	m.cards = kept
	return nil
}

type mockQuizRepo struct {
	quizzes []*domain.Quiz
}

func (m *mockQuizRepo) CreateMany(ctx context.Context, quizzes []*domain.Quiz) error {
	m.quizzes = append(m.quizzes, quizzes...)
	return nil
}

func (m *mockQuizRepo) ListByNote(ctx context.Context, noteID string) ([]*domain.Quiz, error) {
	var quizzes []*domain.Quiz
	for _, q := range m.quizzes {
		if q.NoteID == noteID {
			quizzes = append(quizzes, q)
		}
	}
	return quizzes, nil
}

func (m *mockQuizRepo) DeleteMany(ctx context.Context, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.quizzes[:0]
	for _, q := range m.quizzes {
		if !drop[q.ID] {
			kept = append(kept, q)
		}
	}
	m.quizzes = kept
	return nil
}

type mockExamResultRepo struct {
	results map[string]*domain.ExamResult
}

func newMockExamResultRepo() *mockExamResultRepo {
	return &mockExamResultRepo{results: make(map[string]*domain.ExamResult)}
}

func (m *mockExamResultRepo) Get(ctx context.Context, noteID string) (*domain.ExamResult, error) {
	if r, ok := m.results[noteID]; ok {
		c := *r
		return &c, nil
	}
	return nil, repository.ErrExamResultNotFound
}

func (m *mockExamResultRepo) Upsert(ctx context.Context, result *domain.ExamResult) error {
	c := *result
	m.results[result.NoteID] = &c
	return nil
}

type fakeGenerator struct {
	flashcards []ai.FlashcardDraft
	quiz       []ai.QuizDraft
	err        error
	gotText    string
	gotCount   int
}

func (f *fakeGenerator) Flashcards(ctx context.Context, content string, count int) ([]ai.FlashcardDraft, error) {
	f.gotText = content
	f.gotCount = count
	return f.flashcards, f.err
}

func (f *fakeGenerator) Quiz(ctx context.Context, content string) ([]ai.QuizDraft, error) {
	f.gotText = content
	return f.quiz, f.err
}

type sentMessage struct {
	studentID int64
	message   *websocket.Message
	exclude   string
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (b *recordingBroadcaster) BroadcastToStudent(studentID int64, message *websocket.Message, excludeInstanceID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{studentID: studentID, message: message, exclude: excludeInstanceID})
	return nil
}

type fakePDF struct {
	page string
}

func (f *fakePDF) RenderPDF(ctx context.Context, page string) ([]byte, error) {
	f.page = page
	return []byte("%PDF-1.7 fake"), nil
}

type countingCache struct {
	entries     map[string][]*domain.Note
	loads       int
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[string][]*domain.Note)}
}

func (c *countingCache) GetOrLoad(ctx context.Context, studentID, courseID int64, load cache.LoadFunc) ([]*domain.Note, error) {
	key := cache.Key(studentID, courseID)
	if notes, ok := c.entries[key]; ok {
		return notes, nil
	}
	c.loads++
	notes, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.entries[key] = notes
	return notes, nil
}

func (c *countingCache) Invalidate(ctx context.Context, studentID, courseID int64) {
	c.invalidated++
	delete(c.entries, cache.Key(studentID, courseID))
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
