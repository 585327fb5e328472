package service

import (
	"testing"
	"time"

	"lesson-notes-server/internal/domain"
)

func TestAuthService_IssueIframeToken(t *testing.T) {
	service := NewAuthService("test-secret", 15*time.Minute)

	tests := []struct {
		name string
		req  *domain.IframeTokenRequest
	}{
		{
			name: "lesson launch",
			req:  &domain.IframeTokenRequest{StudentID: 1, CourseID: 2, UnitNumber: intPtr(3), LessonTitle: strPtr("L1")},
		},
		{
			name: "course launch",
			req:  &domain.IframeTokenRequest{StudentID: 4, CourseID: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.IssueIframeToken(tt.req)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if resp.Token == "" {
				t.Error("expected token to be generated")
			}
			if resp.ExpiresIn != 900 {
				t.Errorf("expected expires_in 900, got %d", resp.ExpiresIn)
			}
			if resp.IssuedAt == 0 {
				t.Error("expected issued_at to be set")
			}

			claims, err := service.ValidateToken(resp.Token)
			if err != nil {
				t.Fatalf("expected token to validate, got %v", err)
			}
			if claims.StudentID != tt.req.StudentID || claims.CourseID != tt.req.CourseID {
				t.Errorf("claims ids = %d/%d", claims.StudentID, claims.CourseID)
			}
			if !sameInt(claims.UnitNumber, tt.req.UnitNumber) || !sameString(claims.LessonTitle, tt.req.LessonTitle) {
				t.Errorf("claims lesson context = %v/%v", claims.UnitNumber, claims.LessonTitle)
			}
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	service := NewAuthService("test-secret", time.Hour)
	other := NewAuthService("other-secret", time.Hour)

	resp, err := other.IssueIframeToken(&domain.IframeTokenRequest{StudentID: 1, CourseID: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := service.ValidateToken(resp.Token); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
	if _, err := service.ValidateToken("garbage"); err == nil {
		t.Error("expected garbage token to be rejected")
	}
}
