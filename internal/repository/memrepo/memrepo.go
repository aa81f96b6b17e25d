// Package memrepo is an in-process implementation of repository.Store.
// It is used by tests and by STORE_DRIVER=memory for local development.
// Unique constraints are enforced under the store mutex, which gives the
// same atomicity a database index would.
package memrepo

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

// Store holds all collections in maps keyed by id.
type Store struct {
	mu        sync.RWMutex
	seq       uint64
	users     map[string]model.User
	friends   map[string]model.Friend
	locations map[string]model.Location
	// order records insertion sequence so equal timestamps still sort
	// newest first.
	order map[string]uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:     map[string]model.User{},
		friends:   map[string]model.Friend{},
		locations: map[string]model.Location{},
		order:     map[string]uint64{},
	}
}

func (s *Store) Users() repository.UserStore         { return userStore{s} }
func (s *Store) Friends() repository.FriendStore     { return friendStore{s} }
func (s *Store) Locations() repository.LocationStore { return locationStore{s} }

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// nextID must be called with mu held for writing.
func (s *Store) nextID() string {
	s.seq++
	id := strconv.FormatUint(s.seq, 10)
	s.order[id] = s.seq
	return id
}

// newestFirst sorts by CreatedAt descending, falling back to insertion
// order.
func (s *Store) newestFirst(ids []string, created func(i int) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ci, cj := created(i), created(j)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return s.order[ids[i]] > s.order[ids[j]]
	})
}

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.s.nextID()
	r.s.users[u.ID] = *u
	return nil
}

func (r userStore) GetByID(_ context.Context, id string) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r userStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r userStore) Update(_ context.Context, u model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.s.users {
		if id != u.ID && other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	cur.FirstName, cur.LastName, cur.Email, cur.UpdatedAt = u.FirstName, u.LastName, u.Email, u.UpdatedAt
	r.s.users[u.ID] = cur
	return nil
}

func (r userStore) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash, u.UpdatedAt = hash, at
	r.s.users[id] = u
	return nil
}

func (r userStore) TouchLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = at
	r.s.users[id] = u
	return nil
}

func (r userStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

type friendStore struct{ s *Store }

func (r friendStore) ListActive(_ context.Context, ownerID string) ([]model.Friend, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []string
	for id, f := range r.s.friends {
		if f.OwnerID == ownerID && f.IsActive {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(i int) time.Time { return r.s.friends[ids[i]].CreatedAt })
	out := make([]model.Friend, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.friends[id])
	}
	return out, nil
}

func (r friendStore) Create(_ context.Context, f *model.Friend) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.friends {
		if existing.IsActive && existing.OwnerID == f.OwnerID && existing.Email == f.Email {
			return repository.ErrDuplicate
		}
	}
	f.ID = r.s.nextID()
	r.s.friends[f.ID] = *f
	return nil
}

func (r friendStore) GetActive(_ context.Context, ownerID, id string) (model.Friend, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.friends[id]
	if !ok || !f.IsActive || f.OwnerID != ownerID {
		return model.Friend{}, repository.ErrNotFound
	}
	return f, nil
}

// mutate applies fn to an active, owned friend.
func (r friendStore) mutate(ownerID, id string, fn func(*model.Friend)) (model.Friend, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.friends[id]
	if !ok || !f.IsActive || f.OwnerID != ownerID {
		return model.Friend{}, repository.ErrNotFound
	}
	fn(&f)
	r.s.friends[id] = f
	return f, nil
}

func (r friendStore) UpdateStatus(_ context.Context, ownerID, id string, status model.FriendStatus, at time.Time) (model.Friend, error) {
	return r.mutate(ownerID, id, func(f *model.Friend) {
		f.Status, f.LastUpdated, f.UpdatedAt = status, at, at
	})
}

func (r friendStore) UpdateLocation(_ context.Context, ownerID, id string, loc model.Coordinates, at time.Time) (model.Friend, error) {
	return r.mutate(ownerID, id, func(f *model.Friend) {
		f.Location, f.LastUpdated, f.UpdatedAt = loc, at, at
	})
}

func (r friendStore) Deactivate(_ context.Context, ownerID, id string, at time.Time) error {
	_, err := r.mutate(ownerID, id, func(f *model.Friend) {
		f.IsActive, f.UpdatedAt = false, at
	})
	return err
}

func (r friendStore) DeleteAllForOwner(_ context.Context, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, f := range r.s.friends {
		if f.OwnerID == ownerID {
			delete(r.s.friends, id)
		}
	}
	return nil
}

// RawFriend returns a friend regardless of owner or active flag.  Tests use it
// to observe soft deletes.
func (s *Store) RawFriend(id string) (model.Friend, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.friends[id]
	return f, ok
}

// RawLocation returns a location regardless of owner.
func (s *Store) RawLocation(id string) (model.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locations[id]
	return l, ok
}

type locationStore struct{ s *Store }

func (r locationStore) List(_ context.Context, ownerID string) ([]model.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var ids []string
	for id, l := range r.s.locations {
		if l.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(i int) time.Time { return r.s.locations[ids[i]].CreatedAt })
	out := make([]model.Location, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.locations[id])
	}
	return out, nil
}

func (r locationStore) Create(_ context.Context, l *model.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.nextID()
	r.s.locations[l.ID] = *l
	return nil
}

func (r locationStore) Get(_ context.Context, ownerID, id string) (model.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok || l.OwnerID != ownerID {
		return model.Location{}, repository.ErrNotFound
	}
	return l, nil
}

func (r locationStore) UpdateCoordinates(_ context.Context, ownerID, id string, loc model.Coordinates, at time.Time) (model.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok || l.OwnerID != ownerID {
		return model.Location{}, repository.ErrNotFound
	}
	l.Location, l.UpdatedAt = loc, at
	r.s.locations[id] = l
	return l, nil
}

func (r locationStore) Delete(_ context.Context, ownerID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok || l.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.s.locations, id)
	return nil
}

func (r locationStore) DeleteAllForOwner(_ context.Context, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, l := range r.s.locations {
		if l.OwnerID == ownerID {
			delete(r.s.locations, id)
		}
	}
	return nil
}
