package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/farrow9/user-api/internal/models"
)

var (
	// ErrUnavailable wraps any backing-store failure. Handlers map it to 503.
	ErrUnavailable = errors.New("user store unavailable")
	// ErrDuplicateUserID is returned by Insert when the user_id is taken.
	ErrDuplicateUserID = errors.New("user_id already exists")
)

// UserStore is the gateway to the users collection. Lookups return nil, nil
// when no record matches; an error always means the store itself failed.
type UserStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error)
	// UpdateFields merges fields into an existing record and returns how many
	// records matched. It never creates a record.
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	List(ctx context.Context) ([]models.User, error)
	Ping(ctx context.Context) error
}
