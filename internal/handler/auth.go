package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/auth"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/service"
)

// Sessions is what the auth handler needs from session.Store.
type Sessions interface {
	Login(w http.ResponseWriter, r *http.Request, userID int64) error
	Logout(w http.ResponseWriter, r *http.Request) error
	UserID(r *http.Request) (int64, bool)
}

// AuthHandler serves /api/auth: registration, login, logout and "who am I".
type AuthHandler struct {
	auth      *service.AuthService
	sessions  Sessions
	validator *Validator
	logger    *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, sessions Sessions, v *Validator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, sessions: sessions, validator: v, logger: logger}
}

type registerRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=50"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	FranchiseName string `json:"franchiseName" validate:"required,max=200"`
	FranchiseeID  string `json:"franchiseeId" validate:"required,max=50"`
	Location      string `json:"location" validate:"max=200"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userResponse wraps the account; the password hash never leaves the
// server (model.User tags it json:"-").
type userResponse struct {
	User *model.User `json:"user"`
}

// HandleRegister creates an account and logs it in.
//
// HTTP: POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:      req.Username,
		Password:      req.Password,
		FranchiseName: req.FranchiseName,
		FranchiseeID:  req.FranchiseeID,
		Location:      req.Location,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.sessions.Login(w, r, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

// HandleLogin checks credentials and starts a session.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.sessions.Login(w, r, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user logged in", slog.Int64("userID", user.ID))
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// HandleLogout ends the session. It succeeds whether or not one existed.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the logged-in account.
//
// HTTP: GET /api/auth/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}
	user, err := h.auth.CurrentUser(r.Context(), userID)
	if apperror.IsNotFound(err) {
		// The account behind a live session is gone.
		_ = h.sessions.Logout(w, r)
		writeError(w, r, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}
