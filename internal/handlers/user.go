package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farrow9/user-api/internal/auth"
	"github.com/farrow9/user-api/internal/models"
	"github.com/farrow9/user-api/internal/store"
)

// ==========================
// UserHandler
//
// All routes sit behind RequireAuth. Any authenticated identity may read or
// modify any record; there is no ownership check.
// ==========================
type UserHandler struct {
	Users store.UserStore
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		slog.Error("list users failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}

	out := make([]map[string]any, 0, len(users))
	for i := range users {
		out = append(out, users[i].Sanitize())
	}
	writeJSON(w, http.StatusOK, out)
}

// ==========================
// Create User (arbitrary record shape; timestamps stamped here)
// ==========================
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		CreatedAt: now,
		UpdatedAt: now,
		Extra:     profileFields(input),
	}
	user.UserID, _ = input["user_id"].(string)

	// A caller-supplied password is hashed, never stored raw.
	if pw, _ := input["password"].(string); pw != "" {
		hash, err := auth.HashPassword(pw)
		if err != nil {
			slog.Error("create user: hash failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		user.Password = hash
	}

	id, err := h.Users.Insert(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUserID) {
			JSONError(w, "user already exists", http.StatusBadRequest)
			return
		}
		slog.Error("create user failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}
	user.ID = id

	writeJSON(w, http.StatusCreated, user.Sanitize())
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Users.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("get user failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}
	if user == nil {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitize())
}

// ==========================
// Update User (partial merge; updatedAt always re-stamped)
// ==========================
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	// The id, credential, and creation stamp are not client-assignable.
	fields := make(map[string]any, len(input)+1)
	for k, v := range input {
		switch k {
		case "_id", "password", "createdAt", "updatedAt":
		default:
			fields[k] = v
		}
	}
	fields["updatedAt"] = time.Now().UTC()

	matched, err := h.Users.UpdateFields(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUserID) {
			JSONError(w, "user already exists", http.StatusBadRequest)
			return
		}
		slog.Error("update user failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}
	if matched == 0 {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}

	user, err := h.Users.FindByID(r.Context(), id)
	if err != nil || user == nil {
		slog.Error("update user: re-read failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitize())
}

// ==========================
// Delete User
// ==========================
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	deleted, err := h.Users.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete user failed", "error", err)
		JSONError(w, ErrMessageUnavailable, http.StatusServiceUnavailable)
		return
	}
	if deleted == 0 {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
