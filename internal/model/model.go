package model

import (
	"bytes"
	"strconv"
	"time"
)

// TimeLayout is the wire format for appointment times: ISO-8601, local, no zone.
const TimeLayout = "2006-01-02T15:04:05"

// StatusConfirmed is the status every new booking starts in.
const StatusConfirmed = "Confirmed"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
}

type Doctor struct {
	ID        int64  `json:"id"`
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio,omitempty"`
}

// Appointment is the row stored by the backend.
type Appointment struct {
	ID              int64
	UserID          int64
	DoctorID        int64
	AppointmentTime time.Time
	Status          string
}

// AppointmentView is the read-only projection served to clients.
type AppointmentView struct {
	ID              int64  `json:"id"`
	AppointmentTime string `json:"appointment_time"`
	DoctorName      string `json:"doctor_name"`
	Specialty       string `json:"specialty"`
	Status          string `json:"status"`
}

// request / response bodies

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// ID decodes from a JSON number or a numeric string; form-driven clients send
// select values as strings. It always encodes as a number.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

type CreateAppointmentRequest struct {
	DoctorID        ID     `json:"doctor_id" validate:"required"`
	AppointmentTime string `json:"appointment_time" validate:"required"`
}

type CreateAppointmentResponse struct {
	Message       string `json:"message"`
	AppointmentID int64  `json:"appointment_id,omitempty"`
}

type DoctorsResponse struct {
	Doctors []Doctor `json:"doctors"`
}

type AppointmentsResponse struct {
	Appointments []AppointmentView `json:"appointments"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
