package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Launch is the lesson context the LMS opens the widget with. Unit and
// lesson are optional; a course-level launch leaves them nil.
type Launch struct {
	StudentID   int64   `json:"student_id"`
	CourseID    int64   `json:"course_id"`
	UnitNumber  *int    `json:"unit_number"`
	LessonTitle *string `json:"lesson_title"`
}

type Claims struct {
	Launch
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

func GenerateToken(launch Launch, expiration time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Launch: launch,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("student:%d", launch.StudentID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.StudentID == 0 {
		return nil, fmt.Errorf("%w: missing student_id", ErrInvalidToken)
	}
	return claims, nil
}
