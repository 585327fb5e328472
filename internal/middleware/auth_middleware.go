package middleware

import (
	"context"
	"net/http"
	"strings"

	"lesson-notes-server/internal/domain"
	"lesson-notes-server/pkg/jwt"
	"lesson-notes-server/pkg/response"
)

type contextKey string

const (
	LaunchKey      contextKey = "launch"
	requestInfoKey contextKey = "request_info"
)

// InstanceHeader identifies the widget iframe that sent a request.
const InstanceHeader = "X-Widget-Instance"

func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwt.ValidateToken(parts[1], jwtSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
				info.studentID = claims.StudentID
			}

			ctx := context.WithValue(r.Context(), LaunchKey, claims.Launch)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetLaunch(r *http.Request) (jwt.Launch, bool) {
	launch, ok := r.Context().Value(LaunchKey).(jwt.Launch)
	return launch, ok
}

func GetStudentID(r *http.Request) int64 {
	launch, _ := GetLaunch(r)
	return launch.StudentID
}

// GetIdentity returns the lesson identity the widget was launched with.
func GetIdentity(r *http.Request) domain.Identity {
	launch, _ := GetLaunch(r)
	return domain.Identity{
		StudentID:   launch.StudentID,
		CourseID:    launch.CourseID,
		UnitNumber:  launch.UnitNumber,
		LessonTitle: launch.LessonTitle,
	}
}

func GetInstanceID(r *http.Request) string {
	if id := r.Header.Get(InstanceHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("instance_id")
}
