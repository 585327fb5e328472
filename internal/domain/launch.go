package domain

type IframeTokenRequest struct {
	StudentID   int64   `json:"student_id" validate:"required,gt=0"`
	CourseID    int64   `json:"course_id" validate:"required,gt=0"`
	UnitNumber  *int    `json:"unit_number" validate:"omitempty,gte=0"`
	LessonTitle *string `json:"lesson_title" validate:"omitempty,max=255"`
}

type IframeTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	IssuedAt  int64  `json:"issued_at"`
}
