package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hospital-booking/internal/model"
)

const (
	DefaultBaseURL  = "http://127.0.0.1:5000"
	requestIDHeader = "X-Request-ID"
)

// Config is everything the client needs to reach the booking API.
type Config struct {
	BaseURL string
	// HTTPClient overrides the transport; Timeout is ignored when it is set.
	HTTPClient *http.Client
	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
}

// Client is a thin typed wrapper over the booking REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

// APIError is a non-2xx answer. Message is the server's "error" field, which
// may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func New(cfg Config, log *zap.Logger) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(base, "/"),
		log:        log,
	}
}

// Register creates an account and returns the server's confirmation message.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	var out model.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	return out.Message, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	var out model.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return out.AccessToken, nil
}

// ListDoctors needs no token. An empty specialty lists everyone.
func (c *Client) ListDoctors(ctx context.Context, specialty string) ([]model.Doctor, error) {
	path := "/api/doctors"
	if specialty != "" {
		path += "?" + url.Values{"specialty": {specialty}}.Encode()
	}
	var out model.DoctorsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return out.Doctors, nil
}

func (c *Client) ListAppointments(ctx context.Context, token string) ([]model.AppointmentView, error) {
	var out model.AppointmentsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/appointments", token, nil, &out); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out.Appointments, nil
}

func (c *Client) CreateAppointment(ctx context.Context, token string, req model.CreateAppointmentRequest) (*model.CreateAppointmentResponse, error) {
	var out model.CreateAppointmentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/appointments", token, req, &out); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return &out, nil
}

// CancelAppointment deletes appointment id and returns the server's message.
func (c *Client) CancelAppointment(ctx context.Context, token string, id int64) (string, error) {
	var out model.MessageResponse
	path := fmt.Sprintf("/api/appointments/%d", id)
	if err := c.doJSON(ctx, http.MethodDelete, path, token, nil, &out); err != nil {
		return "", fmt.Errorf("cancel appointment: %w", err)
	}
	return out.Message, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	rid := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, rid)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", rid),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e model.ErrorResponse
		if err := json.Unmarshal(respBody, &e); err == nil {
			apiErr.Message = e.Error
		} else {
			msg := strings.TrimSpace(string(respBody))
			if len(msg) > 300 {
				msg = msg[:300]
			}
			apiErr.Message = msg
		}
		c.log.Warn("api non-2xx response", zap.Int("status", resp.StatusCode), zap.String("path", path), zap.String("error", apiErr.Message))
		return apiErr
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
