package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lesson-notes-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrFolderNotFound = errors.New("folder not found")

type FolderRepository interface {
	Create(ctx context.Context, folder *domain.Folder) error
	Get(ctx context.Context, id string) (*domain.Folder, error)
	ListByStudentCourse(ctx context.Context, studentID, courseID int64) ([]*domain.Folder, error)
	Update(ctx context.Context, folder *domain.Folder) error
	Delete(ctx context.Context, id string) error
}

type CouchDBFolderRepository struct {
	db *kivik.DB
}

type folderDoc struct {
	ID        string `json:"_id"`
	Rev       string `json:"_rev,omitempty"`
	DocType   string `json:"doc_type"`
	StudentID int64  `json:"student_id"`
	CourseID  int64  `json:"course_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func NewFolderRepository(client *kivik.Client, dbName string) *CouchDBFolderRepository {
	return &CouchDBFolderRepository{
		db: client.DB(dbName),
	}
}

func folderDocID(id string) string {
	return fmt.Sprintf("folder:%s", id)
}

func (r *CouchDBFolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	doc := folderDoc{
		ID:        folderDocID(folder.ID),
		DocType:   docTypeFolder,
		StudentID: folder.StudentID,
		CourseID:  folder.CourseID,
		Name:      folder.Name,
		CreatedAt: formatTime(folder.CreatedAt),
		UpdatedAt: formatTime(folder.UpdatedAt),
	}

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

func (r *CouchDBFolderRepository) Get(ctx context.Context, id string) (*domain.Folder, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return docToFolder(doc)
}

func (r *CouchDBFolderRepository) ListByStudentCourse(ctx context.Context, studentID, courseID int64) ([]*domain.Folder, error) {
	docs, err := findDocs[folderDoc](ctx, r.db, folderListQuery(studentID, courseID))
	if err != nil {
		return nil, fmt.Errorf("failed to query folders: %w", err)
	}

	folders := make([]*domain.Folder, 0, len(docs))
	for i := range docs {
		folder, err := docToFolder(&docs[i])
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}

	return folders, nil
}

func (r *CouchDBFolderRepository) Update(ctx context.Context, folder *domain.Folder) error {
	doc, err := r.get(ctx, folder.ID)
	if err != nil {
		return err
	}

	doc.Name = folder.Name
	doc.UpdatedAt = formatTime(folder.UpdatedAt)

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}

	return nil
}

func (r *CouchDBFolderRepository) Delete(ctx context.Context, id string) error {
	doc, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := r.db.Delete(ctx, doc.ID, doc.Rev); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	return nil
}

func (r *CouchDBFolderRepository) get(ctx context.Context, id string) (*folderDoc, error) {
	var doc folderDoc
	if err := r.db.Get(ctx, folderDocID(id)).ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return &doc, nil
}

func docToFolder(doc *folderDoc) (*domain.Folder, error) {
	createdAt, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	updatedAt, err := parseTime(doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &domain.Folder{
		ID:        strings.TrimPrefix(doc.ID, "folder:"),
		StudentID: doc.StudentID,
		CourseID:  doc.CourseID,
		Name:      doc.Name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func folderListQuery(studentID, courseID int64) map[string]interface{} {
	return map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":   docTypeFolder,
			"student_id": studentID,
			"course_id":  courseID,
			"created_at": map[string]interface{}{"$gt": nil},
		},
		"sort":      sortBy("asc", "doc_type", "student_id", "course_id", "created_at"),
		"use_index": useIndex(indexByOwner),
	}
}
