package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	models "github.com/phillip/foodshare-go/models"
)

const foodNS = "foodShare.food"

func newTestStore(mt *mtest.T) *Mongo {
	return NewMongo(mt.Client, Options{
		Database:            "foodShare",
		FoodCollection:      "food",
		RequestedCollection: "requestedFood",
	})
}

func TestMongoAddFood(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stores document with generated id", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		food := models.Food{"foodName": "Rice", "foodQuantity": 3.0}
		id, err := s.AddFood(context.Background(), food)
		require.NoError(mt, err)
		assert.False(mt, id.IsZero())
		assert.Equal(mt, id, food[models.FieldID])

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
		doc := evt.Command.Lookup("documents").Array().Index(0).Value().Document()
		assert.Equal(mt, "Rice", doc.Lookup("foodName").StringValue())
		assert.Equal(mt, id, doc.Lookup("_id").ObjectID())
	})

	mt.Run("keeps client supplied id", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		want := primitive.NewObjectID()
		id, err := s.AddFood(context.Background(), models.Food{"_id": want.Hex(), "foodName": "Rice"})
		require.NoError(mt, err)
		assert.Equal(mt, want, id)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		doc := evt.Command.Lookup("documents").Array().Index(0).Value().Document()
		assert.Equal(mt, want, doc.Lookup("_id").ObjectID())
	})

	mt.Run("write error", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key",
		}))

		_, err := s.AddFood(context.Background(), models.Food{"foodName": "Rice"})
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoListFoods(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unsorted", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foodNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "foodName", Value: "Bread"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "foodName", Value: "Milk"}},
		))

		foods, err := s.ListFoods(context.Background(), ListOptions{})
		require.NoError(mt, err)
		require.Len(mt, foods, 2)
		assert.Equal(mt, "Bread", foods[0].Name())

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		_, err = evt.Command.LookupErr("sort")
		assert.Error(mt, err, "no sort expected")
	})

	mt.Run("sorted by expiry", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foodNS, mtest.FirstBatch))

		foods, err := s.ListFoods(context.Background(), ListOptions{SortByExpiry: true})
		require.NoError(mt, err)
		assert.NotNil(mt, foods)
		assert.Empty(mt, foods)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		sort := evt.Command.Lookup("sort").Document()
		assert.Equal(mt, int64(1), sort.Lookup(models.FieldExpiry).AsInt64())
	})

	mt.Run("command error", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad query",
		}))

		_, err := s.ListFoods(context.Background(), ListOptions{})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "find food")
	})
}

func TestMongoFeaturedFoods(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("top quantities", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foodNS, mtest.FirstBatch,
			bson.D{{Key: "foodQuantity", Value: 9}},
			bson.D{{Key: "foodQuantity", Value: 4}},
		))

		foods, err := s.FeaturedFoods(context.Background())
		require.NoError(mt, err)
		assert.Len(mt, foods, 2)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, int64(FeaturedLimit), evt.Command.Lookup("limit").AsInt64())
		sort := evt.Command.Lookup("sort").Document()
		assert.Equal(mt, int64(-1), sort.Lookup(models.FieldQuantity).AsInt64())
	})
}

func TestMongoGetFood(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		s := newTestStore(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foodNS, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: id},
				{Key: "foodName", Value: "Apples"},
				{Key: "donator", Value: bson.D{{Key: "email", Value: "donor@example.com"}}},
			},
		))

		food, err := s.GetFood(context.Background(), id)
		require.NoError(mt, err)
		got, ok := food.ID()
		require.True(mt, ok)
		assert.Equal(mt, id, got)
		assert.Equal(mt, "donor@example.com", food.DonatorEmail())
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foodNS, mtest.FirstBatch))

		_, err := s.GetFood(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoFoodsByDonator(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filters on donator email", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, foodNS, mtest.FirstBatch))

		_, err := s.FoodsByDonator(context.Background(), "donor@example.com")
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, "donor@example.com", filter.Lookup(models.FieldDonatorEmail).StringValue())
	})
}

func TestMongoDeleteFood(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		s := newTestStore(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "foodImage", Value: "https://res.cloudinary.com/demo/image/upload/v1/foodshare/a.jpg"},
		}}))

		food, err := s.DeleteFood(context.Background(), id)
		require.NoError(mt, err)
		assert.Contains(mt, food.Image(), "foodshare/a.jpg")

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.True(mt, evt.Command.Lookup("remove").Boolean())
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.DeleteFood(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoRequestFood(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("moves listing to requested collection", func(mt *mtest.T) {
		s := newTestStore(mt)
		id := primitive.NewObjectID()
		at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: id},
				{Key: "foodName", Value: "Soup"},
			}}),
			mtest.CreateSuccessResponse(),
		)

		food, err := s.RequestFood(context.Background(), id, "hungry@example.com", at)
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusRequested, food[models.FieldStatus])
		assert.Equal(mt, "hungry@example.com", food[models.FieldRequestedBy])

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		assert.Equal(mt, "findAndModify", events[0].CommandName)
		assert.Equal(mt, "food", events[0].Command.Lookup("findAndModify").StringValue())
		assert.Equal(mt, "insert", events[1].CommandName)
		assert.Equal(mt, "requestedFood", events[1].Command.Lookup("insert").StringValue())

		doc := events[1].Command.Lookup("documents").Array().Index(0).Value().Document()
		assert.Equal(mt, id, doc.Lookup("_id").ObjectID())
		assert.Equal(mt, "hungry@example.com", doc.Lookup(models.FieldRequestedBy).StringValue())
		assert.Equal(mt, models.StatusRequested, doc.Lookup(models.FieldStatus).StringValue())
	})

	mt.Run("already claimed", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.RequestFood(context.Background(), primitive.NewObjectID(), "late@example.com", time.Now())
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.Len(mt, mt.GetAllStartedEvents(), 1, "nothing inserted")
	})
}

func TestMongoRequestsByUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reads requested collection", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "foodShare.requestedFood", mtest.FirstBatch,
			bson.D{{Key: "requestedBy", Value: "hungry@example.com"}, {Key: "status", Value: "requested"}},
		))

		foods, err := s.RequestsByUser(context.Background(), "hungry@example.com")
		require.NoError(mt, err)
		require.Len(mt, foods, 1)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "requestedFood", evt.Command.Lookup("find").StringValue())
		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, "hungry@example.com", filter.Lookup(models.FieldRequestedBy).StringValue())
	})
}

func TestMongoPing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ok", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, s.Ping(context.Background()))
	})
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestMongoRequestFoodInTransaction(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	newTxStore := func(mt *mtest.T) *Mongo {
		return NewMongo(mt.Client, Options{
			Database:            "foodShare",
			FoodCollection:      "food",
			RequestedCollection: "requestedFood",
			UseTransactions:     true,
		})
	}

	mt.Run("commits the move", func(mt *mtest.T) {
		s := newTxStore(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: id},
				{Key: "foodName", Value: "Soup"},
			}}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		food, err := s.RequestFood(context.Background(), id, "hungry@example.com", time.Now().UTC())
		require.NoError(mt, err)
		assert.Equal(mt, "hungry@example.com", food[models.FieldRequestedBy])
		assert.Equal(mt, []string{"findAndModify", "insert", "commitTransaction"}, commandNames(mt))
	})

	mt.Run("already claimed", func(mt *mtest.T) {
		s := newTxStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateSuccessResponse(),
		)

		_, err := s.RequestFood(context.Background(), primitive.NewObjectID(), "late@example.com", time.Now().UTC())
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.NotContains(mt, commandNames(mt), "insert")
		assert.NotContains(mt, commandNames(mt), "commitTransaction")
	})

	mt.Run("insert failure aborts", func(mt *mtest.T) {
		s := newTxStore(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: id}}}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "duplicate key",
			}),
			mtest.CreateSuccessResponse(),
		)

		_, err := s.RequestFood(context.Background(), id, "hungry@example.com", time.Now().UTC())
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
		assert.Equal(mt, []string{"findAndModify", "insert", "abortTransaction"}, commandNames(mt))
	})
}
