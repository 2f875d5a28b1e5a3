package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/farrow9/user-api/internal/auth"
	"github.com/farrow9/user-api/internal/models"
	"github.com/farrow9/user-api/internal/store"
)

func authedHandler(t *testing.T, sawUser *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			t.Error("CurrentUser not set on authorized request")
			return
		}
		*sawUser = u.UserID
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_Success(t *testing.T) {
	users := store.NewMemory()
	id, err := users.Insert(context.Background(), &models.User{UserID: "alice"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	token, err := tokens.Issue(id.Hex())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var sawUser string
	h := RequireAuth(tokens, users)(authedHandler(t, &sawUser))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
	if sawUser != "alice" {
		t.Errorf("resolved user: got %q, want alice", sawUser)
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	users := store.NewMemory()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)

	expiredSvc := auth.NewTokenService([]byte("test-secret"), -time.Minute)
	expired, _ := expiredSvc.Issue(primitive.NewObjectID().Hex())

	// Valid token whose subject was deleted after issuance.
	deletedID, _ := users.Insert(context.Background(), &models.User{UserID: "gone"})
	deletedToken, _ := tokens.Issue(deletedID.Hex())
	if _, err := users.Delete(context.Background(), deletedID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	notAnID, _ := tokens.Issue("not-an-object-id")

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"scheme without token", "Bearer"},
		{"wrong scheme", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"deleted subject", "Bearer " + deletedToken},
		{"non-id subject", "Bearer " + notAnID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := RequireAuth(tokens, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler reached on rejected request")
			}))

			req := httptest.NewRequest("GET", "/api/users", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rr.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] == "" {
				t.Error("401 body missing error message")
			}
		})
	}
}

// failingStore simulates an unreachable backing store.
type failingStore struct {
	store.UserStore
}

func (failingStore) FindByID(context.Context, primitive.ObjectID) (*models.User, error) {
	return nil, errors.New("find user: " + store.ErrUnavailable.Error())
}

func TestRequireAuth_StoreFailureIs503(t *testing.T) {
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	token, _ := tokens.Issue(primitive.NewObjectID().Hex())

	h := RequireAuth(tokens, failingStore{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with store down")
	}))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rr.Code)
	}
}
