package memrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

func TestUsers_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Users().Create(ctx, &model.User{Email: "a@x.com"}))
	err := s.Users().Create(ctx, &model.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestFriends_OwnerScopeAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now().UTC()
	f := &model.Friend{OwnerID: "A", Email: "bob@x.com", Status: model.StatusUnknown, IsActive: true, CreatedAt: now}
	require.NoError(t, s.Friends().Create(ctx, f))

	_, err := s.Friends().UpdateStatus(ctx, "B", f.ID, model.StatusSafe, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Friends().Deactivate(ctx, "B", f.ID, now), repository.ErrNotFound)

	require.NoError(t, s.Friends().Deactivate(ctx, "A", f.ID, now))
	list, err := s.Friends().ListActive(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, list)

	raw, ok := s.RawFriend(f.ID)
	require.True(t, ok)
	assert.False(t, raw.IsActive)

	// the email is free again once the previous row is inactive
	require.NoError(t, s.Friends().Create(ctx, &model.Friend{OwnerID: "A", Email: "bob@x.com", IsActive: true}))
}

func TestFriends_DuplicatePerOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Friends().Create(ctx, &model.Friend{OwnerID: "A", Email: "bob@x.com", IsActive: true}))
	assert.ErrorIs(t, s.Friends().Create(ctx, &model.Friend{OwnerID: "A", Email: "bob@x.com", IsActive: true}), repository.ErrDuplicate)
	assert.NoError(t, s.Friends().Create(ctx, &model.Friend{OwnerID: "B", Email: "bob@x.com", IsActive: true}))
}

func TestLocations_NewestFirstAndHardDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := &model.Location{OwnerID: "A", Name: "Home", CreatedAt: t0}
	second := &model.Location{OwnerID: "A", Name: "Work", CreatedAt: t0.Add(time.Minute)}
	require.NoError(t, s.Locations().Create(ctx, first))
	require.NoError(t, s.Locations().Create(ctx, second))

	list, err := s.Locations().List(ctx, "A")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Work", list[0].Name)

	assert.ErrorIs(t, s.Locations().Delete(ctx, "B", first.ID), repository.ErrNotFound)
	require.NoError(t, s.Locations().Delete(ctx, "A", first.ID))
	_, ok := s.RawLocation(first.ID)
	assert.False(t, ok)
}
