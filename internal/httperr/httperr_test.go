package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("guard: %w", ErrActiveOrgRequired)
	if !errors.Is(wrapped, ErrActiveOrgRequired) {
		t.Error("wrapped error should match ErrActiveOrgRequired")
	}
	if errors.Is(wrapped, ErrForbidden) {
		t.Error("wrapped error should not match ErrForbidden")
	}
}

func TestWithCause_PreservesCodeAndStatus(t *testing.T) {
	cause := errors.New("db down")
	err := ErrServer.WithCause(cause)
	if !errors.Is(err, ErrServer) {
		t.Error("WithCause result should match ErrServer")
	}
	if !errors.Is(err, cause) {
		t.Error("WithCause result should unwrap to cause")
	}
	if err.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", err.Status, http.StatusInternalServerError)
	}
}

func TestWrite_KnownError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Write(c, ErrVetNotVerified)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Error.Code != "vet_not_verified" {
		t.Errorf("code = %q, want %q", body.Error.Code, "vet_not_verified")
	}
}

func TestWrite_UnknownErrorBecomesServerError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Write(c, errors.New("pq: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if got := w.Body.String(); got == "" || !json.Valid([]byte(got)) {
		t.Fatalf("body should be JSON, got %q", got)
	}
	if want := "server_error"; !containsJSONCode(t, w.Body.Bytes(), want) {
		t.Errorf("body %s should carry code %q", w.Body.String(), want)
	}
	if containsSubstring(w.Body.String(), "connection refused") {
		t.Error("internal error detail must not leak to the client")
	}
}

func containsJSONCode(t *testing.T, body []byte, code string) bool {
	t.Helper()
	var parsed struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return parsed.Error.Code == code
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
