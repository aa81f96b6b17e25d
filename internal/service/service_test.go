package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository/memrepo"
	"github.com/iliyamo/allclear/internal/utils"
)

// clock advances one second per call so successive writes are ordered.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	store     *memrepo.Store
	sessions  *Sessions
	accounts  *Accounts
	friends   *Friends
	locations *Locations
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := memrepo.New()
	c := newClock()
	sess := NewSessions("test-secret", time.Hour, st.Users(), time.Now)
	return fixture{
		store:     st,
		sessions:  sess,
		accounts:  NewAccounts(st, sess, bcrypt.MinCost, c.Now, zerolog.Nop()),
		friends:   NewFriends(st.Friends(), c.Now),
		locations: NewLocations(st.Locations(), c.Now),
	}
}

func (f fixture) signUp(t *testing.T, email string) AuthResult {
	t.Helper()
	res, err := f.accounts.SignUp(context.Background(), SignUpInput{
		FirstName: "Ann", LastName: "Lee", Email: email, Password: "secret1",
	})
	require.NoError(t, err)
	return res
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.signUp(t, "A@X.com")
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.True(t, res.User.IsActive)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)
	assert.NotEmpty(t, res.Token.Token)

	_, err := f.accounts.SignUp(ctx, SignUpInput{FirstName: "B", LastName: "C", Email: "a@x.com", Password: "other12"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	_, err = f.accounts.SignUp(ctx, SignUpInput{FirstName: "B", LastName: "C", Email: "  a@X.COM ", Password: "other12"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSignUpTokenValidates(t *testing.T) {
	f := newFixture(t)
	res := f.signUp(t, "a@x.com")

	u, err := f.sessions.Validate(context.Background(), res.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, u.ID)
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.signUp(t, "a@x.com")

	res, err := f.accounts.SignIn(ctx, "A@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, res.User.ID)
	assert.False(t, res.User.LastLogin.IsZero())

	stored, err := f.store.Users().GetByID(ctx, created.User.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastLogin.Equal(res.User.LastLogin))

	_, errUnknown := f.accounts.SignIn(ctx, "nobody@x.com", "secret1")
	_, errWrong := f.accounts.SignIn(ctx, "a@x.com", "wrong-pass")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestSignIn_Deactivated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := utils.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	u := model.User{FirstName: "D", LastName: "E", Email: "off@x.com", PasswordHash: hash}
	require.NoError(t, f.store.Users().Create(ctx, &u))

	_, err = f.accounts.SignIn(ctx, "off@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.accounts.SignIn(ctx, "off@x.com", "secret1")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signUp(t, "a@x.com")
	f.signUp(t, "b@x.com")

	taken := "B@x.com"
	_, err := f.accounts.UpdateProfile(ctx, a.User.ID, ProfileUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	same := "a@x.com"
	name := "  Anna "
	u, err := f.accounts.UpdateProfile(ctx, a.User.ID, ProfileUpdate{Email: &same, FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Anna", u.FirstName)
	assert.Equal(t, "Lee", u.LastName)
	assert.Equal(t, "a@x.com", u.Email)

	fresh := "new@x.com"
	u, err = f.accounts.UpdateProfile(ctx, a.User.ID, ProfileUpdate{Email: &fresh})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", u.Email)

	_, err = f.accounts.UpdateProfile(ctx, "missing", ProfileUpdate{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signUp(t, "a@x.com")

	err := f.accounts.ChangePassword(ctx, a.User.ID, "nope", "newpass1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, f.accounts.ChangePassword(ctx, a.User.ID, "secret1", "newpass1"))

	_, err = f.accounts.SignIn(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.accounts.SignIn(ctx, "a@x.com", "newpass1")
	assert.NoError(t, err)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signUp(t, "a@x.com")
	b := f.signUp(t, "b@x.com")

	fa, err := f.friends.Add(ctx, a.User.ID, NewFriend{Username: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)
	la, err := f.locations.Add(ctx, a.User.ID, NewLocation{Name: "Home"})
	require.NoError(t, err)
	fb, err := f.friends.Add(ctx, b.User.ID, NewFriend{Username: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)

	require.NoError(t, f.accounts.DeleteAccount(ctx, a.User.ID))

	_, err = f.sessions.Validate(ctx, a.Token.Token)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, ok := f.store.RawFriend(fa.ID)
	assert.False(t, ok)
	_, ok = f.store.RawLocation(la.ID)
	assert.False(t, ok)
	_, ok = f.store.RawFriend(fb.ID)
	assert.True(t, ok)

	assert.ErrorIs(t, f.accounts.DeleteAccount(ctx, a.User.ID), ErrUserNotFound)
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signUp(t, "a@x.com")

	_, err := f.sessions.Validate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.sessions.Validate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := utils.NewSessionToken("test-secret", a.User.ID, "a@x.com", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = f.sessions.Validate(ctx, expired.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	orphan, err := f.sessions.Issue("no-such-user", "x@x.com")
	require.NoError(t, err)
	_, err = f.sessions.Validate(ctx, orphan.Token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFriends_AddAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signUp(t, "a@x.com").User.ID
	other := f.signUp(t, "b@x.com").User.ID

	bob, err := f.friends.Add(ctx, owner, NewFriend{Username: " Bob ", Email: "BOB@x.com", Location: model.Coordinates{Lat: 1, Lng: 2}})
	require.NoError(t, err)
	assert.Equal(t, "Bob", bob.Username)
	assert.Equal(t, "bob@x.com", bob.Email)
	assert.Equal(t, model.StatusUnknown, bob.Status)
	assert.True(t, bob.IsActive)

	cat, err := f.friends.Add(ctx, owner, NewFriend{Username: "Cat", Email: "cat@x.com", Status: model.StatusSafe})
	require.NoError(t, err)

	_, err = f.friends.Add(ctx, owner, NewFriend{Username: "Bobby", Email: "bob@X.com"})
	assert.ErrorIs(t, err, ErrDuplicateFriend)

	// Same email under a different owner is allowed.
	_, err = f.friends.Add(ctx, other, NewFriend{Username: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)

	list, err := f.friends.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, cat.ID, list[0].ID)
	assert.Equal(t, bob.ID, list[1].ID)
}

func TestFriends_AddRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signUp(t, "a@x.com").User.ID

	_, err := f.friends.Add(ctx, owner, NewFriend{Username: "Bob", Email: "bob@x.com", Location: model.Coordinates{Lat: 91}})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = f.friends.Add(ctx, owner, NewFriend{Username: "Bob", Email: "bob@x.com", Status: "Fine"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	list, err := f.friends.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFriends_Updates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signUp(t, "a@x.com").User.ID
	other := f.signUp(t, "b@x.com").User.ID
	bob, err := f.friends.Add(ctx, owner, NewFriend{Username: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)

	up, err := f.friends.UpdateStatus(ctx, owner, bob.ID, model.StatusEmergency)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEmergency, up.Status)
	assert.True(t, up.LastUpdated.After(bob.CreatedAt))

	_, err = f.friends.UpdateStatus(ctx, owner, bob.ID, "Fine")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	moved, err := f.friends.UpdateLocation(ctx, owner, bob.ID, model.Coordinates{Lat: -33.9, Lng: 151.2})
	require.NoError(t, err)
	assert.Equal(t, model.Coordinates{Lat: -33.9, Lng: 151.2}, moved.Location)
	assert.True(t, moved.LastUpdated.After(up.LastUpdated))

	_, err = f.friends.UpdateLocation(ctx, owner, bob.ID, model.Coordinates{Lat: 999})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	raw, _ := f.store.RawFriend(bob.ID)
	assert.Equal(t, moved.Location, raw.Location)

	_, err = f.friends.UpdateStatus(ctx, other, bob.ID, model.StatusSafe)
	assert.ErrorIs(t, err, ErrFriendNotFound)
	_, err = f.friends.UpdateLocation(ctx, owner, "nope", model.Coordinates{})
	assert.ErrorIs(t, err, ErrFriendNotFound)
}

func TestFriends_RemoveIsSoft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signUp(t, "a@x.com").User.ID
	bob, err := f.friends.Add(ctx, owner, NewFriend{Username: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)

	require.NoError(t, f.friends.Remove(ctx, owner, bob.ID))
	assert.ErrorIs(t, f.friends.Remove(ctx, owner, bob.ID), ErrFriendNotFound)

	raw, ok := f.store.RawFriend(bob.ID)
	require.True(t, ok)
	assert.False(t, raw.IsActive)

	list, err := f.friends.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.friends.UpdateStatus(ctx, owner, bob.ID, model.StatusSafe)
	assert.ErrorIs(t, err, ErrFriendNotFound)

	// The email is free again once the old row is inactive.
	_, err = f.friends.Add(ctx, owner, NewFriend{Username: "Bob", Email: "bob@x.com"})
	assert.NoError(t, err)
}

func TestLocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signUp(t, "a@x.com").User.ID
	other := f.signUp(t, "b@x.com").User.ID

	home, err := f.locations.Add(ctx, owner, NewLocation{Name: "Home", Type: "Home", Location: model.Coordinates{Lat: 10, Lng: 20}})
	require.NoError(t, err)
	assert.Equal(t, model.TypeHome, home.Type)
	assert.Equal(t, "", home.Description)

	odd, err := f.locations.Add(ctx, owner, NewLocation{Name: "Bunker", Type: "Bunker"})
	require.NoError(t, err)
	assert.Equal(t, model.TypeOther, odd.Type)

	_, err = f.locations.Add(ctx, owner, NewLocation{Name: "Bad", Location: model.Coordinates{Lng: 181}})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	list, err := f.locations.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, odd.ID, list[0].ID)

	moved, err := f.locations.UpdateCoordinates(ctx, owner, home.ID, model.Coordinates{Lat: 11, Lng: 21})
	require.NoError(t, err)
	assert.True(t, moved.UpdatedAt.After(home.UpdatedAt))
	_, err = f.locations.UpdateCoordinates(ctx, owner, home.ID, model.Coordinates{Lat: -91})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = f.locations.UpdateCoordinates(ctx, other, home.ID, model.Coordinates{})
	assert.ErrorIs(t, err, ErrLocationNotFound)

	assert.ErrorIs(t, f.locations.Remove(ctx, other, home.ID), ErrLocationNotFound)
	require.NoError(t, f.locations.Remove(ctx, owner, home.ID))
	_, ok := f.store.RawLocation(home.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, f.locations.Remove(ctx, owner, home.ID), ErrLocationNotFound)
}
