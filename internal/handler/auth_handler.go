package handler

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"hospital-booking/internal/auth"
	"hospital-booking/internal/model"
	"hospital-booking/internal/store"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !h.decode(w, r, &req, "Username, email, and password are required") {
		return
	}

	exists, err := h.store.UserExists(r.Context(), req.Email, req.Username)
	if err != nil {
		h.log.Error("user lookup failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to create user", Details: err.Error()})
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "Email or username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("hash password failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to create user", Details: err.Error()})
		return
	}

	u := &model.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// lost a race with another registration
			writeError(w, http.StatusConflict, "Email or username already exists")
			return
		}
		h.log.Error("create user failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to create user", Details: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, model.MessageResponse{
		Message: fmt.Sprintf("User %s created successfully", u.Username),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !h.decode(w, r, &req, "Email and password are required") {
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error("user lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tok, err := h.tokens.MakeToken(u.ID)
	if err != nil {
		h.log.Error("sign token failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{AccessToken: tok})
}
