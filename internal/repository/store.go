package repository

import (
	"context"
	"time"

	"github.com/iliyamo/allclear/internal/model"
)

// UserStore persists accounts.  Emails passed in are already normalised.
type UserStore interface {
	// Create inserts u and fills u.ID.  Returns ErrDuplicate when the email
	// is taken.
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// Update writes the name and email fields of u.  Returns ErrDuplicate
	// when the new email collides with another account.
	Update(ctx context.Context, u model.User) error
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// FriendStore persists friends.  Every method is scoped by ownerID.
type FriendStore interface {
	// ListActive returns the owner's active friends, newest first.
	ListActive(ctx context.Context, ownerID string) ([]model.Friend, error)
	// Create inserts f and fills f.ID.  Returns ErrDuplicate when an
	// active friend with the same owner and email exists.
	Create(ctx context.Context, f *model.Friend) error
	GetActive(ctx context.Context, ownerID, id string) (model.Friend, error)
	UpdateStatus(ctx context.Context, ownerID, id string, status model.FriendStatus, at time.Time) (model.Friend, error)
	UpdateLocation(ctx context.Context, ownerID, id string, loc model.Coordinates, at time.Time) (model.Friend, error)
	// Deactivate flips IsActive to false; the row is kept.
	Deactivate(ctx context.Context, ownerID, id string, at time.Time) error
	// DeleteAllForOwner purges every row of the owner, active or not.
	DeleteAllForOwner(ctx context.Context, ownerID string) error
}

// LocationStore persists points of interest.  Every method is scoped by
// ownerID.
type LocationStore interface {
	// List returns the owner's locations, newest first.
	List(ctx context.Context, ownerID string) ([]model.Location, error)
	Create(ctx context.Context, l *model.Location) error
	Get(ctx context.Context, ownerID, id string) (model.Location, error)
	UpdateCoordinates(ctx context.Context, ownerID, id string, loc model.Coordinates, at time.Time) (model.Location, error)
	// Delete removes the row permanently.
	Delete(ctx context.Context, ownerID, id string) error
	DeleteAllForOwner(ctx context.Context, ownerID string) error
}

// Store bundles the three collections behind one connection.
type Store interface {
	Users() UserStore
	Friends() FriendStore
	Locations() LocationStore
	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
