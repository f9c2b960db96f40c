package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hospital-booking/internal/middleware"
	"hospital-booking/internal/model"
	"hospital-booking/internal/store"
)

func uid(ctx context.Context) int64 {
	id, _ := middleware.UserID(ctx)
	return id
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	userID := uid(r.Context())

	var req model.CreateAppointmentRequest
	if !h.decode(w, r, &req, "doctor_id and appointment_time are required") {
		return
	}

	doctorID := int64(req.DoctorID)
	if _, err := h.store.GetDoctor(r.Context(), doctorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Doctor not found")
			return
		}
		h.log.Error("get doctor failed", zap.Int64("doctor_id", doctorID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	at, err := parseAppointmentTime(req.AppointmentTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time format. Use ISO 8601 (YYYY-MM-DDTHH:MM:SS)")
		return
	}

	apt := &model.Appointment{
		UserID:          userID,
		DoctorID:        doctorID,
		AppointmentTime: at,
		Status:          model.StatusConfirmed,
	}
	if err := h.store.CreateAppointment(r.Context(), apt); err != nil {
		if errors.Is(err, store.ErrConflict) {
			h.metrics.ObserveAppointment("booked", "conflict")
			writeError(w, http.StatusConflict, "This time slot is already booked")
			return
		}
		h.metrics.ObserveAppointment("booked", "error")
		h.log.Error("create appointment failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.ObserveAppointment("booked", "ok")
	writeJSON(w, http.StatusCreated, model.CreateAppointmentResponse{
		Message:       "Appointment booked successfully!",
		AppointmentID: apt.ID,
	})
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	apts, err := h.store.ListAppointments(r.Context(), uid(r.Context()))
	if err != nil {
		h.log.Error("list appointments failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, model.AppointmentsResponse{Appointments: apts})
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}

	apt, err := h.store.GetAppointment(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}
	if err != nil {
		h.log.Error("get appointment failed", zap.Int64("appointment_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// only the patient who booked it may cancel
	if apt.UserID != uid(r.Context()) {
		writeError(w, http.StatusForbidden, "Unauthorized. You can only cancel your own appointments.")
		return
	}

	if err := h.store.DeleteAppointment(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}
		h.metrics.ObserveAppointment("cancelled", "error")
		h.log.Error("delete appointment failed", zap.Int64("appointment_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to cancel appointment", Details: err.Error()})
		return
	}

	h.metrics.ObserveAppointment("cancelled", "ok")
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Appointment cancelled successfully"})
}
