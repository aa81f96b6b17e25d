// Package mongorepo implements repository.Store on MongoDB.  Ids are
// ObjectID hex strings; anything that is not valid hex is reported as
// repository.ErrNotFound without a round trip.
package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/iliyamo/allclear/internal/repository"
)

const (
	usersCollection     = "users"
	friendsCollection   = "friends"
	locationsCollection = "locations"
)

// Store holds the collections of one database.
type Store struct {
	client    *mongo.Client
	users     *mongo.Collection
	friends   *mongo.Collection
	locations *mongo.Collection
}

// New binds a Store to dbName on an already connected client.
func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:    client,
		users:     db.Collection(usersCollection),
		friends:   db.Collection(friendsCollection),
		locations: db.Collection(locationsCollection),
	}
}

func (s *Store) Users() repository.UserStore         { return &UserRepo{c: s.users} }
func (s *Store) Friends() repository.FriendStore     { return &FriendRepo{c: s.friends} }
func (s *Store) Locations() repository.LocationStore { return &LocationRepo{c: s.locations} }

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// EnsureIndexes creates the unique and lookup indexes.  The friend index
// is partial so removed friends do not block re-adding the same email.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uq_users_email"),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.friends.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_friends_owner_active_email").
				SetPartialFilterExpression(bson.D{{Key: "isActive", Value: true}}),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_friends_owner"),
		},
	}); err != nil {
		return fmt.Errorf("friends index: %w", err)
	}
	if _, err := s.locations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_locations_owner"),
	}); err != nil {
		return fmt.Errorf("locations index: %w", err)
	}
	return nil
}

// translate maps driver errors onto repository tags.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	}
	return err
}

func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// newestFirst sorts by creation time, then by id.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
