package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/farrow9/user-api/internal/auth"
	"github.com/farrow9/user-api/internal/metrics"
	"github.com/farrow9/user-api/internal/models"
	"github.com/farrow9/user-api/internal/store"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users  store.UserStore
	Tokens *auth.TokenService
}

// ==========================
// Signup (password stored as bcrypt hash; no auto-login)
// ==========================
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	userID, _ := input["user_id"].(string)
	password, _ := input["password"].(string)
	if userID == "" || password == "" {
		JSONError(w, "user_id and password are required", http.StatusBadRequest)
		return
	}

	existing, err := h.Users.FindByUserID(r.Context(), userID)
	if err != nil {
		slog.Error("signup: lookup failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}
	if existing != nil {
		JSONError(w, "user already exists", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("signup: hash failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		UserID:    userID,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
		Extra:     profileFields(input),
	}

	if _, err := h.Users.Insert(r.Context(), user); err != nil {
		// The unique index backstops the existence check above: a concurrent
		// signup that won the race surfaces here as a duplicate key.
		if errors.Is(err, store.ErrDuplicateUserID) {
			JSONError(w, "user already exists", http.StatusBadRequest)
			return
		}
		slog.Error("signup: insert failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "user created successfully"})
}

// ==========================
// Login (404 unknown user, 401 bad password, 200 with token)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID   string `json:"user_id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if input.UserID == "" || input.Password == "" {
		JSONError(w, "user_id and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.Users.FindByUserID(r.Context(), input.UserID)
	if err != nil {
		slog.Error("login: lookup failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}
	if user == nil {
		metrics.RecordAuthAttempt("unknown_user")
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}

	if !auth.CheckPassword(input.Password, user.Password) {
		metrics.RecordAuthAttempt("bad_credentials")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex())
	if err != nil {
		slog.Error("login: token issue failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.RecordAuthAttempt("success")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// profileFields returns the request fields that ride along on the record,
// with the credential and store-managed keys stripped.
func profileFields(input map[string]any) map[string]any {
	extra := make(map[string]any)
	for k, v := range input {
		switch k {
		case "user_id", "password", "_id", "createdAt", "updatedAt":
		default:
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}
