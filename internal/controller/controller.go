package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hospital-booking/internal/apiclient"
	"hospital-booking/internal/model"
	"hospital-booking/internal/session"
)

const DefaultTimeLayout = "1/2/2006, 3:04:05 PM"

// ErrInvalidInput means a required field was empty; nothing was sent.
var ErrInvalidInput = errors.New("invalid input")

// API is the slice of the booking backend the controller talks to.
// *apiclient.Client implements it.
type API interface {
	Register(ctx context.Context, req model.RegisterRequest) (string, error)
	Login(ctx context.Context, req model.LoginRequest) (string, error)
	ListDoctors(ctx context.Context, specialty string) ([]model.Doctor, error)
	ListAppointments(ctx context.Context, token string) ([]model.AppointmentView, error)
	CreateAppointment(ctx context.Context, token string, req model.CreateAppointmentRequest) (*model.CreateAppointmentResponse, error)
	CancelAppointment(ctx context.Context, token string, id int64) (string, error)
}

type Options struct {
	// TimeLayout formats appointment times for display.
	TimeLayout string
	// Location interprets the zone-less times the server sends.
	Location *time.Location
	Logger   *zap.Logger
}

// Controller drives the two booking views. Each command method runs to
// completion, updates State and renders it.
type Controller struct {
	api      API
	sess     *session.Manager
	render   Renderer
	confirm  Confirmer
	validate *validator.Validate
	log      *zap.Logger
	layout   string
	loc      *time.Location

	mu    sync.Mutex
	state State
}

func New(api API, sess *session.Manager, r Renderer, c Confirmer, opts Options) *Controller {
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctl := &Controller{
		api:      api,
		sess:     sess,
		render:   r,
		confirm:  c,
		validate: validator.New(),
		log:      opts.Logger,
		layout:   opts.TimeLayout,
		loc:      opts.Location,
	}
	sess.Subscribe(ctl.onToken)
	return ctl
}

// onToken keeps the view in step with the session; callers render.
func (c *Controller) onToken(token string) {
	c.update(func(s *State) {
		if token == "" {
			s.View = ViewAuth
		} else {
			s.View = ViewMain
		}
	})
}

// Start shows the main view when a token is stored, the auth view otherwise.
func (c *Controller) Start(ctx context.Context) {
	if c.sess.LoggedIn() {
		c.ShowMain(ctx)
		return
	}
	c.ShowAuth()
}

// ShowMain switches to the main view and loads doctors and appointments
// concurrently, rendering once both are done.
func (c *Controller) ShowMain(ctx context.Context) {
	c.update(func(s *State) { s.View = ViewMain })

	var g errgroup.Group
	g.Go(func() error { c.loadDoctors(ctx, ""); return nil })
	g.Go(func() error { c.loadAppointments(ctx); return nil })
	_ = g.Wait()

	c.draw()
}

func (c *Controller) ShowAuth() {
	c.update(func(s *State) { s.View = ViewAuth })
	c.draw()
}

// State returns a snapshot of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}

func (c *Controller) draw() {
	if c.render != nil {
		c.render.Render(c.State())
	}
}

func (c *Controller) alert(m Message) {
	if c.render != nil {
		c.render.Alert(m)
	}
}

func (c *Controller) check(in any) error {
	err := c.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return fmt.Errorf("%w: %s required", ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// errorText is what the user sees after "Error: ": the server's error field
// for API failures, the error itself otherwise.
func errorText(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func isAPIError(err error) bool {
	var apiErr *apiclient.APIError
	return errors.As(err, &apiErr)
}
