package controller

import (
	"context"
	"fmt"
	"time"

	"hospital-booking/internal/model"
)

const cancelPrompt = "Are you sure you want to cancel this appointment?"

// BookingInput is the booking form. DoctorID 0 means nothing is selected.
// Time is a local "YYYY-MM-DDTHH:MM" value.
type BookingInput struct {
	DoctorID int64
	Time     string `validate:"required"`
}

// LoadAppointments refreshes the caller's appointments. Without a token it
// does nothing at all.
func (c *Controller) LoadAppointments(ctx context.Context) {
	if !c.loadAppointments(ctx) {
		return
	}
	c.draw()
}

func (c *Controller) loadAppointments(ctx context.Context) bool {
	token := c.sess.Token()
	if token == "" {
		return false
	}

	list, err := c.api.ListAppointments(ctx, token)
	if err != nil {
		text := "Could not fetch appointments."
		if !isAPIError(err) {
			text = errorText(err)
		}
		c.update(func(s *State) {
			s.Appointments = nil
			s.AppointmentsText = text
		})
		return true
	}

	if len(list) == 0 {
		c.update(func(s *State) {
			s.Appointments = nil
			s.AppointmentsText = "You have no appointments."
		})
		return true
	}

	items := make([]AppointmentItem, 0, len(list))
	for _, a := range list {
		items = append(items, AppointmentItem{
			ID: a.ID,
			Text: fmt.Sprintf("%s with %s (%s) - Status: %s",
				c.formatTime(a.AppointmentTime), a.DoctorName, a.Specialty, a.Status),
		})
	}
	c.update(func(s *State) {
		s.Appointments = items
		s.AppointmentsText = ""
	})
	return true
}

// formatTime renders a zone-less server time in the configured layout.
// Unparseable values are shown as sent.
func (c *Controller) formatTime(raw string) string {
	t, err := time.ParseInLocation(model.TimeLayout, raw, c.loc)
	if err != nil {
		return raw
	}
	return t.Format(c.layout)
}

// CreateAppointment books in.Time (seconds are appended) with in.DoctorID and
// reloads the list on success.
func (c *Controller) CreateAppointment(ctx context.Context, in BookingInput) error {
	if in.DoctorID == 0 {
		c.update(func(s *State) { s.BookingMsg = Message{Text: "Please select a doctor.", Kind: KindError} })
		c.draw()
		return nil
	}
	if err := c.check(in); err != nil {
		return err
	}

	resp, err := c.api.CreateAppointment(ctx, c.sess.Token(), model.CreateAppointmentRequest{
		DoctorID:        model.ID(in.DoctorID),
		AppointmentTime: in.Time + ":00",
	})
	if err != nil {
		c.update(func(s *State) { s.BookingMsg = failure(errorText(err)) })
		c.draw()
		return nil
	}

	c.update(func(s *State) { s.BookingMsg = success(resp.Message) })
	c.loadAppointments(ctx)
	c.draw()
	return nil
}

// CancelAppointment deletes appointment id once the user confirms; without a
// Confirmer nothing is cancelled. The outcome is shown as an alert, then the
// list is reloaded.
func (c *Controller) CancelAppointment(ctx context.Context, id int64) {
	if c.confirm == nil || !c.confirm.Confirm(ctx, cancelPrompt) {
		return
	}

	msg, err := c.api.CancelAppointment(ctx, c.sess.Token(), id)
	if err != nil {
		c.alert(failure(errorText(err)))
		return
	}

	c.alert(success(msg))
	c.LoadAppointments(ctx)
}
