package controller

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"hospital-booking/internal/model"
	"hospital-booking/internal/session"
)

type RegisterInput struct {
	Username string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// Register creates an account. The result lands in the register message area;
// the user still has to log in.
func (c *Controller) Register(ctx context.Context, in RegisterInput) error {
	if err := c.check(in); err != nil {
		return err
	}

	msg, err := c.api.Register(ctx, model.RegisterRequest{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
	c.update(func(s *State) {
		if err != nil {
			s.RegisterMsg = failure(errorText(err))
			return
		}
		s.RegisterMsg = success(msg)
	})
	c.draw()
	return nil
}

// Login stores the returned token and opens the main view.
func (c *Controller) Login(ctx context.Context, in LoginInput) error {
	if err := c.check(in); err != nil {
		return err
	}

	token, err := c.api.Login(ctx, model.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		c.update(func(s *State) { s.LoginMsg = failure(errorText(err)) })
		c.draw()
		return nil
	}

	if err := c.sess.Set(ctx, token); errors.Is(err, session.ErrNoToken) {
		c.update(func(s *State) { s.LoginMsg = failure("no access token in response") })
		c.draw()
		return nil
	} else if err != nil {
		c.log.Warn("persist session failed", zap.Error(err))
	}
	c.update(func(s *State) { s.LoginMsg = success("Login successful!") })
	c.ShowMain(ctx)
	return nil
}

// Logout forgets the token locally and returns to the auth view.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.sess.Clear(ctx); err != nil {
		c.log.Warn("clear session failed", zap.Error(err))
	}
	c.draw()
}
