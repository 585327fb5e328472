package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestEnvelopes(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter)
		wantStatus  int
		wantSuccess bool
		wantError   string
		wantMessage string
	}{
		{
			name:        "success",
			write:       func(w http.ResponseWriter) { Success(w, map[string]string{"id": "n1"}) },
			wantStatus:  http.StatusOK,
			wantSuccess: true,
		},
		{
			name:        "created with message",
			write:       func(w http.ResponseWriter) { WithMessage(w, http.StatusCreated, "No previous note. Created new note.", nil) },
			wantStatus:  http.StatusCreated,
			wantSuccess: true,
			wantMessage: "No previous note. Created new note.",
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter) { NotFound(w, "Note not found") },
			wantStatus: http.StatusNotFound,
			wantError:  "Note not found",
		},
		{
			name:       "too many requests",
			write:      func(w http.ResponseWriter) { TooManyRequests(w, "slow down") },
			wantStatus: http.StatusTooManyRequests,
			wantError:  "slow down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %s", ct)
			}

			resp := decode(t, rec)
			if resp.Success != tt.wantSuccess || resp.Error != tt.wantError || resp.Message != tt.wantMessage {
				t.Errorf("unexpected envelope %+v", resp)
			}
		})
	}
}

func TestFile(t *testing.T) {
	rec := httptest.NewRecorder()
	File(rec, "note_1.doc", "application/msword", []byte("<html></html>"), false)

	if rec.Header().Get("Content-Disposition") != `attachment; filename="note_1.doc"` {
		t.Errorf("Content-Disposition = %s", rec.Header().Get("Content-Disposition"))
	}
	if rec.Header().Get("Content-Length") != "13" {
		t.Errorf("Content-Length = %s", rec.Header().Get("Content-Length"))
	}
	if rec.Body.String() != "<html></html>" {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	File(rec, "note-1.pdf", "application/pdf", []byte("%PDF"), true)
	if rec.Header().Get("Content-Disposition") != `inline; filename="note-1.pdf"` {
		t.Errorf("Content-Disposition = %s", rec.Header().Get("Content-Disposition"))
	}
}
