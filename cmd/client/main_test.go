package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-booking/internal/apiclient"
	"hospital-booking/internal/controller"
	"hospital-booking/internal/session"
	"hospital-booking/internal/view"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (rc *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc.mu.Lock()
	rc.calls = append(rc.calls, r.Method+" "+r.URL.Path)
	rc.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/appointments":
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Appointment booked successfully","appointment_id":1}`))
	case r.URL.Path == "/api/appointments":
		_, _ = w.Write([]byte(`{"appointments":[]}`))
	default:
		_, _ = w.Write([]byte(`{"doctors":[]}`))
	}
}

func (rc *recorder) seen() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string(nil), rc.calls...)
}

type fixture struct {
	ctl  *controller.Controller
	term *view.Terminal
	out  *bytes.Buffer
	api  *recorder
}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sess, err := session.NewManager(ctx, &session.MemoryStorage{})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	term := view.NewTerminal(strings.NewReader(""), out)
	api := apiclient.New(apiclient.Config{BaseURL: srv.URL}, nil)
	ctl := controller.New(api, sess, term, term, controller.Options{})
	if loggedIn {
		require.NoError(t, sess.Set(ctx, "tok"))
	}
	out.Reset()
	return &fixture{ctl: ctl, term: term, out: out, api: rec}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		loggedIn bool
		line     string
		quit     bool
		output   string
		calls    []string
		booking  string
	}{
		{name: "empty line", line: ""},
		{name: "quit", line: "quit", quit: true},
		{name: "exit is case-insensitive", line: "EXIT", quit: true},
		{name: "unknown command on auth view", line: "book 1 2024-05-01T10:00", output: `unknown command "book"; try help`},
		{name: "register arity", line: "register ann ann@x.com", output: "usage: register <username> <email> <password>"},
		{name: "login arity", line: "login ann@x.com", output: "usage: login <email> <password>"},
		{name: "unknown command on main view", loggedIn: true, line: "dance", output: `unknown command "dance"; try help`},
		{
			name: "book with non-numeric doctor", loggedIn: true, line: "book abc 2024-05-01T10:00",
			output: "usage: book <doctor-id> <YYYY-MM-DDTHH:MM>",
		},
		{name: "book without doctor", loggedIn: true, line: "book", booking: "Please select a doctor."},
		{name: "cancel with non-numeric id", loggedIn: true, line: "cancel x", output: "usage: cancel <appointment-id>"},
		{name: "cancel arity", loggedIn: true, line: "cancel", output: "usage: cancel <appointment-id>"},
		{
			name: "book sends the request", loggedIn: true, line: "book 1 2024-05-01T10:00",
			calls:   []string{"POST /api/appointments", "GET /api/appointments"},
			booking: "Appointment booked successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.loggedIn)

			quit := dispatch(context.Background(), f.ctl, f.term, strings.Fields(tt.line))

			assert.Equal(t, tt.quit, quit)
			if tt.output != "" {
				assert.Contains(t, f.out.String(), tt.output)
			}
			assert.Equal(t, tt.calls, f.api.seen())
			assert.Equal(t, tt.booking, f.ctl.State().BookingMsg.Text)
		})
	}
}
