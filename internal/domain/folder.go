package domain

import "time"

type Folder struct {
	ID        string    `json:"id"`
	StudentID int64     `json:"student_id"`
	CourseID  int64     `json:"course_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FolderWithNotes struct {
	*Folder
	Notes []*Note `json:"notes"`
}

type CreateFolderRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type RenameFolderRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}
