package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned when a path or token carries a user id that is not
// a valid ObjectID hex string.
var ErrInvalidID = errors.New("invalid user id")

// User is a document in the users collection. UserID is the caller-chosen
// login name; ID is assigned by the store and never changes. Extra carries
// any additional profile fields a caller stored on the record.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id,omitempty"`
	Password  []byte             `bson:"password,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty"`
	Extra     map[string]any     `bson:",inline"`
}

// ParseID converts an ObjectID hex string from a URL path or token subject.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// Sanitize renders the record for an API response: _id as hex, timestamps as
// RFC 3339 (null when unset), profile fields merged in. The password hash is
// never included, even if one slipped into Extra.
func (u *User) Sanitize() map[string]any {
	out := make(map[string]any, len(u.Extra)+4)
	for k, v := range u.Extra {
		if k == "password" {
			continue
		}
		out[k] = v
	}
	if !u.ID.IsZero() {
		out["_id"] = u.ID.Hex()
	}
	if u.UserID != "" {
		out["user_id"] = u.UserID
	}
	out["createdAt"] = formatTime(u.CreatedAt)
	out["updatedAt"] = formatTime(u.UpdatedAt)
	return out
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
