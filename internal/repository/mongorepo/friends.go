package mongorepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

// FriendRepo wraps the 'friends' collection.  Filters always include
// userId; mutations additionally require isActive.
type FriendRepo struct{ c *mongo.Collection }

// ownedActive builds the filter for one active friend of an owner.
func ownedActive(ownerID, id string) (bson.D, bool) {
	owner, ok1 := parseID(ownerID)
	fid, ok2 := parseID(id)
	if !ok1 || !ok2 {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: fid}, {Key: "userId", Value: owner}, {Key: "isActive", Value: true}}, true
}

func (r *FriendRepo) ListActive(ctx context.Context, ownerID string) ([]model.Friend, error) {
	owner, ok := parseID(ownerID)
	if !ok {
		return []model.Friend{}, nil
	}
	cur, err := r.c.Find(ctx,
		bson.D{{Key: "userId", Value: owner}, {Key: "isActive", Value: true}},
		options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var docs []friendDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Friend, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (r *FriendRepo) Create(ctx context.Context, f *model.Friend) error {
	owner, ok := parseID(f.OwnerID)
	if !ok {
		return repository.ErrNotFound
	}
	doc := friendDoc{
		ID:          primitive.NewObjectID(),
		UserID:      owner,
		Username:    f.Username,
		Email:       f.Email,
		Location:    pointDoc{Lat: f.Location.Lat, Lng: f.Location.Lng},
		Status:      string(f.Status),
		LastUpdated: f.LastUpdated,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	f.ID = doc.ID.Hex()
	return nil
}

func (r *FriendRepo) GetActive(ctx context.Context, ownerID, id string) (model.Friend, error) {
	filter, ok := ownedActive(ownerID, id)
	if !ok {
		return model.Friend{}, repository.ErrNotFound
	}
	var doc friendDoc
	if err := r.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		return model.Friend{}, translate(err)
	}
	return doc.toModel(), nil
}

func (r *FriendRepo) update(ctx context.Context, ownerID, id string, set bson.D) (model.Friend, error) {
	filter, ok := ownedActive(ownerID, id)
	if !ok {
		return model.Friend{}, repository.ErrNotFound
	}
	var doc friendDoc
	err := r.c.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, returnAfter()).Decode(&doc)
	if err != nil {
		return model.Friend{}, translate(err)
	}
	return doc.toModel(), nil
}

func (r *FriendRepo) UpdateStatus(ctx context.Context, ownerID, id string, status model.FriendStatus, at time.Time) (model.Friend, error) {
	return r.update(ctx, ownerID, id, bson.D{
		{Key: "status", Value: string(status)},
		{Key: "lastUpdated", Value: at},
		{Key: "updatedAt", Value: at},
	})
}

func (r *FriendRepo) UpdateLocation(ctx context.Context, ownerID, id string, loc model.Coordinates, at time.Time) (model.Friend, error) {
	return r.update(ctx, ownerID, id, bson.D{
		{Key: "location.lat", Value: loc.Lat},
		{Key: "location.lng", Value: loc.Lng},
		{Key: "lastUpdated", Value: at},
		{Key: "updatedAt", Value: at},
	})
}

func (r *FriendRepo) Deactivate(ctx context.Context, ownerID, id string, at time.Time) error {
	_, err := r.update(ctx, ownerID, id, bson.D{
		{Key: "isActive", Value: false},
		{Key: "updatedAt", Value: at},
	})
	return err
}

func (r *FriendRepo) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	owner, ok := parseID(ownerID)
	if !ok {
		return nil
	}
	_, err := r.c.DeleteMany(ctx, bson.D{{Key: "userId", Value: owner}})
	return err
}
