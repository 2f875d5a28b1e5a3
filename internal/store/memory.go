package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/farrow9/user-api/internal/models"
)

// Memory is an in-process UserStore with the same semantics as the Mongo
// implementation, including user_id uniqueness. It backs the test suite and
// the STORE=memory dev mode.
type Memory struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemory() *Memory {
	return &Memory{users: make(map[primitive.ObjectID]models.User)}
}

func (m *Memory) FindByUserID(_ context.Context, userID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.UserID == userID {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *Memory) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (m *Memory) Insert(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.UserID != "" {
		for _, existing := range m.users {
			if existing.UserID == u.UserID {
				return primitive.NilObjectID, ErrDuplicateUserID
			}
		}
	}

	id := primitive.NewObjectID()
	stored := *copyUser(*u)
	stored.ID = id
	m.users[id] = stored
	return id, nil
}

func (m *Memory) UpdateFields(_ context.Context, id primitive.ObjectID, fields map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return 0, nil
	}

	updated := *copyUser(u)
	for k, v := range fields {
		switch k {
		case "user_id":
			s, ok := v.(string)
			if !ok {
				continue
			}
			for otherID, other := range m.users {
				if otherID != id && other.UserID == s {
					return 0, ErrDuplicateUserID
				}
			}
			updated.UserID = s
		case "updatedAt":
			if t, ok := v.(time.Time); ok {
				updated.UpdatedAt = t
			}
		default:
			if updated.Extra == nil {
				updated.Extra = make(map[string]any)
			}
			updated.Extra[k] = v
		}
	}
	m.users[id] = updated
	return 1, nil
}

func (m *Memory) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return 0, nil
	}
	delete(m.users, id)
	return 1, nil
}

func (m *Memory) List(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

// copyUser returns a deep enough copy that callers cannot mutate stored state
// through the Extra map or password slice.
func copyUser(u models.User) *models.User {
	out := u
	if u.Extra != nil {
		out.Extra = make(map[string]any, len(u.Extra))
		for k, v := range u.Extra {
			out.Extra[k] = v
		}
	}
	if u.Password != nil {
		out.Password = append([]byte(nil), u.Password...)
	}
	return &out
}
