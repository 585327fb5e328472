package middleware

import (
	"net/http"

	"lesson-notes-server/pkg/hash"
	"lesson-notes-server/pkg/response"
)

const LMSKeyHeader = "X-LMS-Key"

// LMSKeyMiddleware admits requests carrying the shared LMS key. keyHash is a
// bcrypt hash; an empty hash lets every request through.
func LMSKeyMiddleware(keyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || keyHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(LMSKeyHeader)
			if key == "" {
				response.Unauthorized(w, "LMS key required")
				return
			}

			if err := hash.Compare(keyHash, key); err != nil {
				response.Unauthorized(w, "Invalid LMS key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
