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

// LocationRepo wraps the 'locations' collection.
type LocationRepo struct{ c *mongo.Collection }

func owned(ownerID, id string) (bson.D, bool) {
	owner, ok1 := parseID(ownerID)
	lid, ok2 := parseID(id)
	if !ok1 || !ok2 {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: lid}, {Key: "userId", Value: owner}}, true
}

func (r *LocationRepo) List(ctx context.Context, ownerID string) ([]model.Location, error) {
	owner, ok := parseID(ownerID)
	if !ok {
		return []model.Location{}, nil
	}
	cur, err := r.c.Find(ctx, bson.D{{Key: "userId", Value: owner}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	var docs []locationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Location, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

func (r *LocationRepo) Create(ctx context.Context, l *model.Location) error {
	owner, ok := parseID(l.OwnerID)
	if !ok {
		return repository.ErrNotFound
	}
	doc := locationDoc{
		ID:          primitive.NewObjectID(),
		UserID:      owner,
		Name:        l.Name,
		Type:        string(l.Type),
		Location:    pointDoc{Lat: l.Location.Lat, Lng: l.Location.Lng},
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	l.ID = doc.ID.Hex()
	return nil
}

func (r *LocationRepo) Get(ctx context.Context, ownerID, id string) (model.Location, error) {
	filter, ok := owned(ownerID, id)
	if !ok {
		return model.Location{}, repository.ErrNotFound
	}
	var doc locationDoc
	if err := r.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		return model.Location{}, translate(err)
	}
	return doc.toModel(), nil
}

func (r *LocationRepo) UpdateCoordinates(ctx context.Context, ownerID, id string, loc model.Coordinates, at time.Time) (model.Location, error) {
	filter, ok := owned(ownerID, id)
	if !ok {
		return model.Location{}, repository.ErrNotFound
	}
	set := bson.D{
		{Key: "location.lat", Value: loc.Lat},
		{Key: "location.lng", Value: loc.Lng},
		{Key: "updatedAt", Value: at},
	}
	var doc locationDoc
	if err := r.c.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, returnAfter()).Decode(&doc); err != nil {
		return model.Location{}, translate(err)
	}
	return doc.toModel(), nil
}

func (r *LocationRepo) Delete(ctx context.Context, ownerID, id string) error {
	filter, ok := owned(ownerID, id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.c.DeleteOne(ctx, filter)
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LocationRepo) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	owner, ok := parseID(ownerID)
	if !ok {
		return nil
	}
	_, err := r.c.DeleteMany(ctx, bson.D{{Key: "userId", Value: owner}})
	return err
}
