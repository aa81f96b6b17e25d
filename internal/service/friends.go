package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

// NewFriend is a validated add-friend request.  An empty Status means
// Unknown.
type NewFriend struct {
	Username string
	Email    string
	Location model.Coordinates
	Status   model.FriendStatus
}

// Friends is the per-owner friend registry.
type Friends struct {
	store repository.FriendStore
	now   func() time.Time
}

func NewFriends(store repository.FriendStore, now func() time.Time) *Friends {
	if now == nil {
		now = time.Now
	}
	return &Friends{store: store, now: now}
}

// List returns the owner's active friends, newest first.
func (f *Friends) List(ctx context.Context, ownerID string) ([]model.Friend, error) {
	out, err := f.store.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out, nil
}

// Add registers a friend for the owner.
func (f *Friends) Add(ctx context.Context, ownerID string, in NewFriend) (model.Friend, error) {
	if !in.Location.Valid() {
		return model.Friend{}, ErrInvalidCoordinates
	}
	status := in.Status
	if status == "" {
		status = model.StatusUnknown
	}
	if !status.Valid() {
		return model.Friend{}, ErrInvalidStatus
	}
	now := f.now().UTC()
	fr := model.Friend{
		OwnerID:     ownerID,
		Username:    strings.TrimSpace(in.Username),
		Email:       model.NormalizeEmail(in.Email),
		Location:    in.Location,
		Status:      status,
		LastUpdated: now,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.store.Create(ctx, &fr); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Friend{}, ErrDuplicateFriend
		}
		return model.Friend{}, fmt.Errorf("create friend: %w", err)
	}
	return fr, nil
}

// UpdateStatus sets the status of an active friend and refreshes
// LastUpdated.
func (f *Friends) UpdateStatus(ctx context.Context, ownerID, id string, status model.FriendStatus) (model.Friend, error) {
	if !status.Valid() {
		return model.Friend{}, ErrInvalidStatus
	}
	fr, err := f.store.UpdateStatus(ctx, ownerID, id, status, f.now().UTC())
	return fr, friendErr(err, "update friend status")
}

// UpdateLocation moves an active friend.  Out-of-range coordinates are
// rejected before the store is touched.
func (f *Friends) UpdateLocation(ctx context.Context, ownerID, id string, loc model.Coordinates) (model.Friend, error) {
	if !loc.Valid() {
		return model.Friend{}, ErrInvalidCoordinates
	}
	fr, err := f.store.UpdateLocation(ctx, ownerID, id, loc, f.now().UTC())
	return fr, friendErr(err, "update friend location")
}

// Remove soft-deletes the friend.  A second Remove reports not found.
func (f *Friends) Remove(ctx context.Context, ownerID, id string) error {
	return friendErr(f.store.Deactivate(ctx, ownerID, id, f.now().UTC()), "remove friend")
}

func friendErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrFriendNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
