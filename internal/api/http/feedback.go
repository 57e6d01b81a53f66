package http

import (
	"net/http"
	"strconv"

	auth "github.com/mind-engage/examsim/internal/auth/middleware"
	"github.com/mind-engage/examsim/internal/feedback"
	"github.com/sirupsen/logrus"
)

func CreateFeedbackHandler(store *feedback.Store, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamType string `json:"exam_type" validate:"max=64"`
			Rating   int    `json:"rating" validate:"required,min=1,max=5"`
			Message  string `json:"message" validate:"max=2000"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		f, err := store.Create(r.Context(), feedback.Feedback{
			UserID:   auth.SubjectFromContext(r.Context()),
			ExamType: req.ExamType,
			Rating:   req.Rating,
			Message:  req.Message,
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	}
}

// GET /admin/feedback?limit=50
func ListFeedbackHandler(store *feedback.Store, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := store.List(r.Context(), limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
