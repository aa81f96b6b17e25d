package mongorepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/repository"
)

var mockDeployment = mtest.NewOptions().ClientType(mtest.Mock)

// asDoc converts a collection document into the bson.D a server reply
// would carry.
func asDoc(t *mtest.T, v any) bson.D {
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

// sent pops the next command sent to the deployment and returns the
// sub-document stored under key.
func sent(t *mtest.T, command, key string) bson.M {
	ev := t.GetStartedEvent()
	require.NotNil(t, ev, "no %s command was sent", command)
	require.Equal(t, command, ev.CommandName)
	var m bson.M
	require.NoError(t, bson.Unmarshal(ev.Command.Lookup(key).Document(), &m))
	return m
}

func sortKeys(t *mtest.T, ev bson.Raw) []string {
	var d bson.D
	require.NoError(t, bson.Unmarshal(ev.Lookup("sort").Document(), &d))
	keys := make([]string, 0, len(d))
	for _, e := range d {
		keys = append(keys, e.Key)
	}
	return keys
}

func TestFriendRepo_Collection(t *testing.T) {
	mt := mtest.New(t, mockDeployment)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	owner := primitive.NewObjectID()
	fid := primitive.NewObjectID()

	mt.Run("list filters owner and active rows, newest first", func(mt *mtest.T) {
		newer := friendDoc{ID: primitive.NewObjectID(), UserID: owner, Username: "Cat", Email: "cat@x.com",
			Status: "Safe", IsActive: true, CreatedAt: at.Add(time.Minute)}
		older := friendDoc{ID: primitive.NewObjectID(), UserID: owner, Username: "Bob", Email: "bob@x.com",
			Status: "Unknown", IsActive: true, CreatedAt: at}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "allclear.friends", mtest.FirstBatch,
			asDoc(mt, newer), asDoc(mt, older)))

		repo := &FriendRepo{c: mt.Coll}
		list, err := repo.ListActive(ctx, owner.Hex())
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "Cat", list[0].Username)
		assert.Equal(mt, "Bob", list[1].Username)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "find", ev.CommandName)
		var filter bson.M
		require.NoError(mt, bson.Unmarshal(ev.Command.Lookup("filter").Document(), &filter))
		assert.Equal(mt, bson.M{"userId": owner, "isActive": true}, filter)
		assert.Equal(mt, []string{"createdAt", "_id"}, sortKeys(mt, ev.Command))
	})

	mt.Run("duplicate active email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Code: 11000, Message: "E11000 duplicate key error collection: allclear.friends",
		}))
		repo := &FriendRepo{c: mt.Coll}
		f := model.Friend{OwnerID: owner.Hex(), Username: "Bob", Email: "bob@x.com", IsActive: true}
		assert.ErrorIs(mt, repo.Create(ctx, &f), repository.ErrDuplicate)
		assert.Empty(mt, f.ID)
	})

	mt.Run("create fills the id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		repo := &FriendRepo{c: mt.Coll}
		f := model.Friend{OwnerID: owner.Hex(), Username: "Bob", Email: "bob@x.com", IsActive: true}
		require.NoError(mt, repo.Create(ctx, &f))
		assert.NotEmpty(mt, f.ID)
	})

	mt.Run("update of a missing or foreign friend", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := &FriendRepo{c: mt.Coll}
		_, err := repo.UpdateStatus(ctx, owner.Hex(), fid.Hex(), model.StatusSafe, at)
		assert.ErrorIs(mt, err, repository.ErrNotFound)

		query := sent(mt, "findAndModify", "query")
		assert.Equal(mt, bson.M{"_id": fid, "userId": owner, "isActive": true}, query)
	})

	mt.Run("location update returns the stored row", func(mt *mtest.T) {
		moved := friendDoc{ID: fid, UserID: owner, Username: "Bob", Email: "bob@x.com",
			Location: pointDoc{Lat: 10, Lng: 20}, Status: "Safe", IsActive: true, LastUpdated: at}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: asDoc(mt, moved)}))
		repo := &FriendRepo{c: mt.Coll}
		f, err := repo.UpdateLocation(ctx, owner.Hex(), fid.Hex(), model.Coordinates{Lat: 10, Lng: 20}, at)
		require.NoError(mt, err)
		assert.Equal(mt, model.Coordinates{Lat: 10, Lng: 20}, f.Location)
		assert.Equal(mt, at, f.LastUpdated)

		update := sent(mt, "findAndModify", "update")
		set := update["$set"].(bson.M)
		assert.Equal(mt, 10.0, set["location.lat"])
		assert.Equal(mt, 20.0, set["location.lng"])
	})

	mt.Run("deactivate keeps the row", func(mt *mtest.T) {
		gone := friendDoc{ID: fid, UserID: owner, Email: "bob@x.com", IsActive: false}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: asDoc(mt, gone)}))
		repo := &FriendRepo{c: mt.Coll}
		require.NoError(mt, repo.Deactivate(ctx, owner.Hex(), fid.Hex(), at))

		update := sent(mt, "findAndModify", "update")
		assert.Equal(mt, false, update["$set"].(bson.M)["isActive"])
		assert.Nil(mt, mt.GetStartedEvent(), "deactivate must not issue a delete")
	})

	mt.Run("deactivate of an already removed friend", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := &FriendRepo{c: mt.Coll}
		assert.ErrorIs(mt, repo.Deactivate(ctx, owner.Hex(), fid.Hex(), at), repository.ErrNotFound)
	})
}

func TestLocationRepo_Collection(t *testing.T) {
	mt := mtest.New(t, mockDeployment)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	lid := primitive.NewObjectID()

	mt.Run("list is scoped to the owner", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "allclear.locations", mtest.FirstBatch,
			asDoc(mt, locationDoc{ID: lid, UserID: owner, Name: "Clinic", Type: "Hospital"})))
		repo := &LocationRepo{c: mt.Coll}
		list, err := repo.List(ctx, owner.Hex())
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, model.TypeHospital, list[0].Type)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		var filter bson.M
		require.NoError(mt, bson.Unmarshal(ev.Command.Lookup("filter").Document(), &filter))
		assert.Equal(mt, bson.M{"userId": owner}, filter)
		assert.Equal(mt, []string{"createdAt", "_id"}, sortKeys(mt, ev.Command))
	})

	mt.Run("get of a foreign location", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "allclear.locations", mtest.FirstBatch))
		repo := &LocationRepo{c: mt.Coll}
		_, err := repo.Get(ctx, owner.Hex(), lid.Hex())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Equal(mt, bson.M{"_id": lid, "userId": owner}, sent(mt, "find", "filter"))
	})

	mt.Run("coordinate update of a missing location", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := &LocationRepo{c: mt.Coll}
		_, err := repo.UpdateCoordinates(ctx, owner.Hex(), lid.Hex(), model.Coordinates{Lat: 1, Lng: 2}, time.Now())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("delete is permanent and owner scoped", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		repo := &LocationRepo{c: mt.Coll}
		require.NoError(mt, repo.Delete(ctx, owner.Hex(), lid.Hex()))
		assert.ErrorIs(mt, repo.Delete(ctx, owner.Hex(), lid.Hex()), repository.ErrNotFound)

		ev := mt.GetStartedEvent()
		require.NotNil(mt, ev)
		assert.Equal(mt, "delete", ev.CommandName)
		deletes, err := ev.Command.Lookup("deletes").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, deletes, 1)
		var q bson.M
		require.NoError(mt, bson.Unmarshal(deletes[0].Document().Lookup("q").Document(), &q))
		assert.Equal(mt, bson.M{"_id": lid, "userId": owner}, q)
	})
}

func TestUserRepo_Collection(t *testing.T) {
	mt := mtest.New(t, mockDeployment)
	ctx := context.Background()

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Code: 11000, Message: "E11000 duplicate key error collection: allclear.users index: uq_users_email",
		}))
		repo := &UserRepo{c: mt.Coll}
		assert.ErrorIs(mt, repo.Create(ctx, &model.User{Email: "a@x.com"}), repository.ErrDuplicate)
	})

	mt.Run("unknown email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "allclear.users", mtest.FirstBatch))
		repo := &UserRepo{c: mt.Coll}
		_, err := repo.GetByEmail(ctx, "ghost@x.com")
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Equal(mt, bson.M{"email": "ghost@x.com"}, sent(mt, "find", "filter"))
	})

	mt.Run("touch login on a deleted user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := &UserRepo{c: mt.Coll}
		err := repo.TouchLogin(ctx, primitive.NewObjectID().Hex(), time.Now())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
