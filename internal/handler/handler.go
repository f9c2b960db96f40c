package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"hospital-booking/internal/auth"
	"hospital-booking/internal/metrics"
	"hospital-booking/internal/model"
)

// Store is the persistence the handlers need; *store.Store implements it.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserExists(ctx context.Context, email, username string) (bool, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	ListDoctors(ctx context.Context, specialty string) ([]model.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*model.Doctor, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	ListAppointments(ctx context.Context, userID int64) ([]model.AppointmentView, error)
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
}

type Handler struct {
	store    Store
	tokens   *auth.Issuer
	log      *zap.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func New(st Store, tokens *auth.Issuer, log *zap.Logger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:    st,
		tokens:   tokens,
		log:      log,
		metrics:  m,
		validate: validator.New(),
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hospital Booking API is running!"))
}

// decode reads a JSON body into v and runs its validate tags. An empty body
// decodes as an empty object. It returns false after writing a 400 with msg.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any, msg string) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// parseAppointmentTime accepts ISO-8601 date-times with or without seconds,
// fractions or an offset. Offsets are dropped: slots are stored as wall-clock time.
func parseAppointmentTime(s string) (time.Time, error) {
	layouts := []string{
		model.TimeLayout,
		"2006-01-02T15:04",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var err error
	for _, l := range layouts {
		var t time.Time
		if t, err = time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	t, rfcErr := time.Parse(time.RFC3339Nano, s)
	if rfcErr != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}
