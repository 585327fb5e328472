package service

import (
	"fmt"
	"time"

	"lesson-notes-server/internal/domain"
	"lesson-notes-server/pkg/jwt"
)

// AuthService issues and checks the launch tokens the LMS embeds in the
// widget iframe.
type AuthService struct {
	jwtSecret     string
	jwtExpiration time.Duration
	now           func() time.Time
}

func NewAuthService(jwtSecret string, jwtExp time.Duration) *AuthService {
	return &AuthService{
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExp,
		now:           time.Now,
	}
}

func (s *AuthService) IssueIframeToken(req *domain.IframeTokenRequest) (*domain.IframeTokenResponse, error) {
	issuedAt := s.now()

	token, err := jwt.GenerateToken(jwt.Launch{
		StudentID:   req.StudentID,
		CourseID:    req.CourseID,
		UnitNumber:  req.UnitNumber,
		LessonTitle: req.LessonTitle,
	}, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate launch token: %w", err)
	}

	return &domain.IframeTokenResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtExpiration.Seconds()),
		IssuedAt:  issuedAt.Unix(),
	}, nil
}

func (s *AuthService) ValidateToken(token string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}
