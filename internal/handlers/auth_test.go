package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farrow9/user-api/internal/auth"
	"github.com/farrow9/user-api/internal/store"
)

func newAuthHandler() (*AuthHandler, *store.Memory) {
	users := store.NewMemory()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	return &AuthHandler{Users: users, Tokens: tokens}, users
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestAuthHandler_Signup(t *testing.T) {
	h, users := newAuthHandler()

	rr := postJSON(t, h.Signup, "/api/signup", map[string]string{"user_id": "alice", "password": "pw1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Signup status: got %d, want 201", rr.Code)
	}

	stored, err := users.FindByUserID(context.Background(), "alice")
	if err != nil || stored == nil {
		t.Fatalf("stored user: %v, %v", stored, err)
	}
	if string(stored.Password) == "pw1" {
		t.Error("password stored in plaintext")
	}
	if !auth.CheckPassword("pw1", stored.Password) {
		t.Error("stored hash does not verify against the signup password")
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped on signup")
	}
}

func TestAuthHandler_Signup_Duplicate(t *testing.T) {
	h, users := newAuthHandler()

	if rr := postJSON(t, h.Signup, "/api/signup", map[string]string{"user_id": "alice", "password": "pw1"}); rr.Code != http.StatusCreated {
		t.Fatalf("first signup: got %d", rr.Code)
	}
	before, _ := users.FindByUserID(context.Background(), "alice")

	rr := postJSON(t, h.Signup, "/api/signup", map[string]string{"user_id": "alice", "password": "other"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup status: got %d, want 400", rr.Code)
	}

	after, _ := users.FindByUserID(context.Background(), "alice")
	if !bytes.Equal(before.Password, after.Password) {
		t.Error("duplicate signup altered the existing record")
	}
}

func TestAuthHandler_Signup_MissingFields(t *testing.T) {
	h, _ := newAuthHandler()

	for _, payload := range []map[string]string{
		{},
		{"user_id": "alice"},
		{"password": "pw1"},
	} {
		if rr := postJSON(t, h.Signup, "/api/signup", payload); rr.Code != http.StatusBadRequest {
			t.Errorf("payload %v: got %d, want 400", payload, rr.Code)
		}
	}
}

func TestAuthHandler_Signup_BadJSON(t *testing.T) {
	h, _ := newAuthHandler()

	req := httptest.NewRequest("POST", "/api/signup", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Signup status: got %d, want 400", rr.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	h, _ := newAuthHandler()
	postJSON(t, h.Signup, "/api/signup", map[string]string{"user_id": "alice", "password": "pw1"})

	rr := postJSON(t, h.Login, "/api/login", map[string]string{"user_id": "alice", "password": "pw1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200", rr.Code)
	}

	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["token"] == "" {
		t.Fatal("no token in login response")
	}

	subject, err := h.Tokens.Verify(out["token"])
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	stored, _ := h.Users.FindByUserID(context.Background(), "alice")
	if subject != stored.ID.Hex() {
		t.Errorf("token subject: got %q, want %q", subject, stored.ID.Hex())
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h, _ := newAuthHandler()
	postJSON(t, h.Signup, "/api/signup", map[string]string{"user_id": "alice", "password": "pw1"})

	rr := postJSON(t, h.Login, "/api/login", map[string]string{"user_id": "alice", "password": "wrong"})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Login status: got %d, want 401", rr.Code)
	}
	var out map[string]string
	_ = json.NewDecoder(rr.Body).Decode(&out)
	if out["error"] != "invalid credentials" {
		t.Errorf("error message: got %q", out["error"])
	}
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	h, _ := newAuthHandler()

	rr := postJSON(t, h.Login, "/api/login", map[string]string{"user_id": "nobody", "password": "pw"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("Login status: got %d, want 404", rr.Code)
	}
}
