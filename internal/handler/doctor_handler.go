package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hospital-booking/internal/model"
	"hospital-booking/internal/store"
)

// ListDoctors serves the directory, filtered by ?specialty= when given.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	specialty := strings.TrimSpace(r.URL.Query().Get("specialty"))

	docs, err := h.store.ListDoctors(r.Context(), specialty)
	if err != nil {
		h.log.Error("list doctors failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, model.DoctorsResponse{Doctors: docs})
}

func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Doctor not found")
		return
	}

	doc, err := h.store.GetDoctor(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Doctor not found")
		return
	}
	if err != nil {
		h.log.Error("get doctor failed", zap.Int64("doctor_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
