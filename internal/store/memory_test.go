package store

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/farrow9/user-api/internal/models"
)

func TestMemory_InsertAndFind(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Insert(ctx, &models.User{UserID: "alice", Password: []byte("hash")})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	byID, err := m.FindByID(ctx, id)
	if err != nil || byID == nil {
		t.Fatalf("FindByID: %v, %v", byID, err)
	}
	if byID.UserID != "alice" {
		t.Errorf("UserID: got %q", byID.UserID)
	}

	byUserID, err := m.FindByUserID(ctx, "alice")
	if err != nil || byUserID == nil || byUserID.ID != id {
		t.Fatalf("FindByUserID: %v, %v", byUserID, err)
	}
}

func TestMemory_NotFoundIsNilNil(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u, err := m.FindByUserID(ctx, "nobody")
	if u != nil || err != nil {
		t.Errorf("FindByUserID: got %v, %v, want nil, nil", u, err)
	}
	u, err = m.FindByID(ctx, primitive.NewObjectID())
	if u != nil || err != nil {
		t.Errorf("FindByID: got %v, %v, want nil, nil", u, err)
	}
}

func TestMemory_DuplicateUserID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Insert(ctx, &models.User{UserID: "alice"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := m.Insert(ctx, &models.User{UserID: "alice"}); err != ErrDuplicateUserID {
		t.Errorf("second insert: got %v, want ErrDuplicateUserID", err)
	}

	// Records without a user_id never collide with each other.
	if _, err := m.Insert(ctx, &models.User{}); err != nil {
		t.Fatalf("anonymous insert: %v", err)
	}
	if _, err := m.Insert(ctx, &models.User{}); err != nil {
		t.Errorf("second anonymous insert: %v", err)
	}
}

func TestMemory_UpdateFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Insert(ctx, &models.User{UserID: "alice", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	stamp := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	matched, err := m.UpdateFields(ctx, id, map[string]any{"email": "a@example.com", "updatedAt": stamp})
	if err != nil || matched != 1 {
		t.Fatalf("UpdateFields: matched=%d err=%v", matched, err)
	}

	u, _ := m.FindByID(ctx, id)
	if u.Extra["email"] != "a@example.com" {
		t.Errorf("email not merged: %v", u.Extra)
	}
	if !u.UpdatedAt.Equal(stamp) {
		t.Errorf("updatedAt: got %v, want %v", u.UpdatedAt, stamp)
	}

	matched, err = m.UpdateFields(ctx, primitive.NewObjectID(), map[string]any{"x": 1})
	if err != nil || matched != 0 {
		t.Errorf("update of missing record: matched=%d err=%v, want 0, nil", matched, err)
	}
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, _ := m.Insert(ctx, &models.User{UserID: "alice"})

	deleted, err := m.Delete(ctx, id)
	if err != nil || deleted != 1 {
		t.Fatalf("Delete: deleted=%d err=%v", deleted, err)
	}
	deleted, err = m.Delete(ctx, id)
	if err != nil || deleted != 0 {
		t.Errorf("second Delete: deleted=%d err=%v, want 0, nil", deleted, err)
	}
}

func TestMemory_ListCopiesRecords(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, _ = m.Insert(ctx, &models.User{UserID: "alice", Extra: map[string]any{"email": "a@example.com"}})

	list, err := m.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %v, %v", list, err)
	}
	list[0].Extra["email"] = "mutated"

	again, _ := m.List(ctx)
	if again[0].Extra["email"] != "a@example.com" {
		t.Error("List exposed internal state: mutation leaked into the store")
	}
}
