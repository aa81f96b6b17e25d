package mongorepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

// UserRepo wraps the 'users' collection.
type UserRepo struct{ c *mongo.Collection }

func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.PasswordHash,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.D) (model.User, error) {
	var doc userDoc
	if err := r.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		return model.User{}, translate(err)
	}
	return doc.toModel(), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	oid, ok := parseID(id)
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepo) set(ctx context.Context, id string, fields bson.D) error {
	oid, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.c.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	return r.set(ctx, u.ID, bson.D{
		{Key: "firstName", Value: u.FirstName},
		{Key: "lastName", Value: u.LastName},
		{Key: "email", Value: u.Email},
		{Key: "updatedAt", Value: u.UpdatedAt},
	})
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	return r.set(ctx, id, bson.D{{Key: "password", Value: hash}, {Key: "updatedAt", Value: at}})
}

func (r *UserRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, id, bson.D{{Key: "lastLogin", Value: at}})
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.c.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
