package http

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mind-engage/examsim/internal/feedback"
	"github.com/mind-engage/examsim/internal/notification"
	"github.com/mind-engage/examsim/internal/quota"
	"github.com/mind-engage/examsim/internal/session"
	"github.com/mind-engage/examsim/internal/user"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type validationError struct {
	Fields map[string]string
}

func (e *validationError) Error() string { return "invalid request" }

const maxBody = 1 << 20

// decode reads a JSON body into dst and validates its struct tags.
// An empty body is treated as {}.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &validationError{Fields: map[string]string{"body": "bad json"}}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return &validationError{Fields: fields}
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, notification.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrPauseNotAllowed),
		errors.Is(err, session.ErrNotPaused),
		errors.Is(err, session.ErrClosed),
		errors.Is(err, session.ErrConflict),
		errors.Is(err, user.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, quota.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, feedback.ErrInvalidRating),
		errors.Is(err, notification.ErrUnknownValue),
		errors.Is(err, notification.ErrMissingTarget),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrInvalidGrant):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := statusOf(err)
	body := map[string]any{"error": err.Error()}
	var verr *validationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		body["error"] = "internal error"
	}
	writeJSON(w, status, body)
}
