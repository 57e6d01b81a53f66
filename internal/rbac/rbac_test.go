package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_DefaultTable(t *testing.T) {
	c := NewChecker(nil)
	tests := []struct {
		role, perm string
		want       bool
	}{
		{"student", "exam:view", true},
		{"student", "session:pause", true},
		{"student", "session:start", true},
		{"student", "insights:click", true},
		{"student", "admin:stats", false},
		{"student", "notification:create", false},
		{"admin", "admin:stats", true},
		{"admin", "anything:at-all", true},
		{"guest", "exam:view", false},
		{"", "exam:view", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Has(tt.role, tt.perm), "%s %s", tt.role, tt.perm)
	}
	assert.True(t, c.Any("student", "admin:stats", "feedback:create"))
	assert.False(t, c.Any("student"))
	assert.Contains(t, c.Permissions("student"), "session:*")
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require("admin:stats")(ok)

	for role, want := range map[string]int{"admin": http.StatusNoContent, "student": http.StatusForbidden, "": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}

	custom := NewChecker(map[string][]string{"auditor": {"admin:stats"}})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(req.Context(), "auditor"))
	rec := httptest.NewRecorder()
	custom.RequireAny("admin:feedback", "admin:stats")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
