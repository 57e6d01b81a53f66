package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mind-engage/examsim/internal/examtype"
)

func ListExamTypesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, examtype.List())
	}
}

// GetExamTypeHandler answers 404 for unknown ids instead of falling back.
func GetExamTypeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !examtype.Has(id) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "exam type not found"})
			return
		}
		writeJSON(w, http.StatusOK, examtype.Resolve(id))
	}
}

// PausePolicyHandler keeps the resolver's fallback to the default type.
func PausePolicyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		writeJSON(w, http.StatusOK, map[string]any{
			"exam_type":    examtype.Resolve(id).ID,
			"pause_policy": examtype.ResolvePausePolicy(id),
		})
	}
}
