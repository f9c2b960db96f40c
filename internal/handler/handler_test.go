package handler_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-booking/internal/auth"
	"hospital-booking/internal/handler"
	"hospital-booking/internal/metrics"
	"hospital-booking/internal/middleware"
	"hospital-booking/internal/model"
	"hospital-booking/internal/store"
)

type env struct {
	srv     *httptest.Server
	store   *store.Memory
	doctors []model.Doctor
}

func setup(t *testing.T, cfg handler.RouterConfig) *env {
	t.Helper()
	st := store.NewMemory()
	var docs []model.Doctor
	for _, d := range store.DemoDoctors {
		docs = append(docs, st.AddDoctor(d))
	}
	m := metrics.New(prometheus.NewRegistry())
	h := handler.New(st, auth.NewIssuer("test-secret", time.Hour), nil, m)
	cfg.Metrics = m
	srv := httptest.NewServer(h.Router(cfg))
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: st, doctors: docs}
}

func (e *env) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

// signup registers and logs in a fresh patient and returns the access token.
func (e *env) signup(t *testing.T, name string) string {
	t.Helper()
	code, _ := e.do(t, "POST", "/auth/register", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": "pw-" + name,
	})
	require.Equal(t, http.StatusCreated, code)
	code, body := e.do(t, "POST", "/auth/login", "", map[string]string{
		"email": name + "@example.com", "password": "pw-" + name,
	})
	require.Equal(t, http.StatusOK, code)
	return body["access_token"].(string)
}

// ----- auth -----

func TestRegister(t *testing.T) {
	e := setup(t, handler.RouterConfig{})

	code, body := e.do(t, "POST", "/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User alice created successfully", body["message"])
}

func TestRegisterValidation(t *testing.T) {
	e := setup(t, handler.RouterConfig{})

	tests := []struct {
		name string
		req  map[string]string
	}{
		{"empty username", map[string]string{"username": "", "email": "a@b.com", "password": "x"}},
		{"empty email", map[string]string{"username": "a", "email": "", "password": "x"}},
		{"empty password", map[string]string{"username": "a", "email": "a@b.com", "password": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := e.do(t, "POST", "/auth/register", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "Username, email, and password are required", body["error"])
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	e := setup(t, handler.RouterConfig{})
	e.signup(t, "bob")

	code, body := e.do(t, "POST", "/auth/register", "", map[string]string{
		"username": "other", "email": "bob@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email or username already exists", body["error"])
}

func TestLoginWrongPassword(t *testing.T) {
	e := setup(t, handler.RouterConfig{})
	e.signup(t, "carol")

	code, body := e.do(t, "POST", "/auth/login", "", map[string]string{
		"email": "carol@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", body["error"])

	code, _ = e.do(t, "POST", "/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLoginMissingFields(t *testing.T) {
	e := setup(t, handler.RouterConfig{})
	code, body := e.do(t, "POST", "/auth/login", "", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email and password are required", body["error"])
}

func TestLoginRateLimited(t *testing.T) {
	e := setup(t, handler.RouterConfig{AuthLimiter: middleware.NewRateLimiter(0.001, 2)})

	var last int
	for i := 0; i < 3; i++ {
		last, _ = e.do(t, "POST", "/auth/login", "", map[string]string{"email": "a@b.com", "password": "x"})
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

// ----- doctors -----

func TestListDoctors(t *testing.T) {
	e := setup(t, handler.RouterConfig{})

	code, body := e.do(t, "GET", "/api/doctors", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["doctors"], 3)

	code, body = e.do(t, "GET", "/api/doctors?specialty=Pediatrics", "", nil)
	require.Equal(t, http.StatusOK, code)
	docs := body["doctors"].([]any)
	require.Len(t, docs, 1)
	assert.Equal(t, "Dr. Carol Williams", docs[0].(map[string]any)["full_name"])
}

func TestGetDoctor(t *testing.T) {
	e := setup(t, handler.RouterConfig{})

	code, body := e.do(t, "GET", fmt.Sprintf("/api/doctors/%d", e.doctors[0].ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Cardiology", body["specialty"])

	code, _ = e.do(t, "GET", "/api/doctors/999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = e.do(t, "GET", "/api/doctors/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// ----- appointments -----

func TestAppointmentsRequireToken(t *testing.T) {
	e := setup(t, handler.RouterConfig{})

	code, body := e.do(t, "GET", "/api/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Missing or invalid token", body["error"])

	code, _ = e.do(t, "GET", "/api/appointments", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBookListCancel(t *testing.T) {
	e := setup(t, handler.RouterConfig{})
	tok := e.signup(t, "dave")
	doc := e.doctors[1]

	code, body := e.do(t, "POST", "/api/appointments", tok, map[string]any{
		"doctor_id": fmt.Sprint(doc.ID), "appointment_time": "2025-11-20T14:30:00",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Appointment booked successfully!", body["message"])
	apptID := int64(body["appointment_id"].(float64))

	code, body = e.do(t, "GET", "/api/appointments", tok, nil)
	require.Equal(t, http.StatusOK, code)
	list := body["appointments"].([]any)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, "2025-11-20T14:30:00", first["appointment_time"])
	assert.Equal(t, doc.FullName, first["doctor_name"])
	assert.Equal(t, doc.Specialty, first["specialty"])
	assert.Equal(t, model.StatusConfirmed, first["status"])

	code, body = e.do(t, "DELETE", fmt.Sprintf("/api/appointments/%d", apptID), tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Appointment cancelled successfully", body["message"])

	_, body = e.do(t, "GET", "/api/appointments", tok, nil)
	assert.Empty(t, body["appointments"])
}

func TestBookValidation(t *testing.T) {
	e := setup(t, handler.RouterConfig{})
	tok := e.signup(t, "erin")

	tests := []struct {
		name string
		body map[string]any
		code int
		msg  string
	}{
		{"missing doctor", map[string]any{"appointment_time": "2025-11-20T14:30:00"}, 400, "doctor_id and appointment_time are required"},
		{"missing time", map[string]any{"doctor_id": e.doctors[0].ID}, 400, "doctor_id and appointment_time are required"},
		{"unknown doctor", map[string]any{"doctor_id": 999, "appointment_time": "2025-11-20T14:30:00"}, 404, "Doctor not found"},
		{"bad time", map[string]any{"doctor_id": e.doctors[0].ID, "appointment_time": "tomorrow"}, 400, "Invalid time format. Use ISO 8601 (YYYY-MM-DDTHH:MM:SS)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := e.do(t, "POST", "/api/appointments", tok, tt.body)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestDoubleBooking(t *testing.T) {
	e := setup(t, handler.RouterConfig{})
	tok1 := e.signup(t, "fred")
	tok2 := e.signup(t, "gina")
	req := map[string]any{"doctor_id": e.doctors[0].ID, "appointment_time": "2025-11-20T09:00:00"}

	code, _ := e.do(t, "POST", "/api/appointments", tok1, req)
	require.Equal(t, http.StatusCreated, code)

	code, body := e.do(t, "POST", "/api/appointments", tok2, req)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "This time slot is already booked", body["error"])

	// same slot expressed without seconds is the same slot
	code, _ = e.do(t, "POST", "/api/appointments", tok2, map[string]any{
		"doctor_id": e.doctors[0].ID, "appointment_time": "2025-11-20T09:00",
	})
	assert.Equal(t, http.StatusConflict, code)
}

func TestCancelOwnership(t *testing.T) {
	e := setup(t, handler.RouterConfig{})
	owner := e.signup(t, "hank")
	other := e.signup(t, "ivy")

	_, body := e.do(t, "POST", "/api/appointments", owner, map[string]any{
		"doctor_id": e.doctors[2].ID, "appointment_time": "2025-12-01T08:00:00",
	})
	id := int64(body["appointment_id"].(float64))

	code, body := e.do(t, "DELETE", fmt.Sprintf("/api/appointments/%d", id), other, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Unauthorized. You can only cancel your own appointments.", body["error"])

	code, _ = e.do(t, "DELETE", "/api/appointments/4242", owner, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestIndexAndMetrics(t *testing.T) {
	e := setup(t, handler.RouterConfig{MetricsHandler: http.NotFoundHandler()})

	resp, err := http.Get(e.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Hospital Booking API is running!", string(b))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	e := setup(t, handler.RouterConfig{AllowedOrigins: []string{"*"}})

	req, _ := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/appointments", nil)
	req.Header.Set("Origin", "http://localhost:8000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func postWithForwardedFor(t *testing.T, url, xff string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(`{"email":"a@b.com","password":"x"}`)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", xff)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	e := setup(t, handler.RouterConfig{AuthLimiter: middleware.NewRateLimiter(0.001, 2)})

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		codes = append(codes, postWithForwardedFor(t, e.srv.URL+"/auth/login", fmt.Sprintf("10.9.9.%d", i)))
	}
	assert.Equal(t, []int{401, 401, 429, 429, 429}, codes)
}

func TestLoginRateLimitTrustedProxy(t *testing.T) {
	e := setup(t, handler.RouterConfig{
		AuthLimiter: middleware.NewRateLimiter(0.001, 1),
		TrustProxy:  true,
	})

	// each forwarded client gets its own bucket
	assert.Equal(t, 401, postWithForwardedFor(t, e.srv.URL+"/auth/login", "10.9.9.1"))
	assert.Equal(t, 401, postWithForwardedFor(t, e.srv.URL+"/auth/login", "10.9.9.2"))
	assert.Equal(t, 429, postWithForwardedFor(t, e.srv.URL+"/auth/login", "10.9.9.1"))
}

func TestAPIRateLimitIgnoresForwardedFor(t *testing.T) {
	e := setup(t, handler.RouterConfig{APIRatePerSecond: 1})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/doctors", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.8.8.%d", i))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Contains(t, codes[1:], http.StatusTooManyRequests)
}

func TestEmptyBodyGetsRequiredFieldsMessage(t *testing.T) {
	e := setup(t, handler.RouterConfig{})
	tok := e.signup(t, "jill")

	tests := []struct {
		path  string
		token string
		msg   string
	}{
		{"/auth/register", "", "Username, email, and password are required"},
		{"/auth/login", "", "Email and password are required"},
		{"/api/appointments", tok, "doctor_id and appointment_time are required"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := e.do(t, "POST", tt.path, tt.token, nil)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.msg, body["error"])
		})
	}

	code, body := e.do(t, "POST", "/auth/login", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid JSON body", body["error"])
}
