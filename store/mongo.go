package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	models "github.com/phillip/foodshare-go/models"
)

type Options struct {
	Database            string
	FoodCollection      string
	RequestedCollection string
	// UseTransactions wraps the claim move in a multi-document transaction.
	// Needs a replica set or sharded cluster.
	UseTransactions bool
}

// Mongo is the MongoDB backed FoodStore.
type Mongo struct {
	client          *mongo.Client
	foods           *mongo.Collection
	requested       *mongo.Collection
	useTransactions bool
}

var _ FoodStore = (*Mongo)(nil)

func NewMongo(client *mongo.Client, opts Options) *Mongo {
	db := client.Database(opts.Database)
	return &Mongo{
		client:          client,
		foods:           db.Collection(opts.FoodCollection),
		requested:       db.Collection(opts.RequestedCollection),
		useTransactions: opts.UseTransactions,
	}
}

func (m *Mongo) AddFood(ctx context.Context, food models.Food) (primitive.ObjectID, error) {
	id := food.EnsureID()

	if _, err := m.foods.InsertOne(ctx, food); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert food: %w", err)
	}
	return id, nil
}

func (m *Mongo) ListFoods(ctx context.Context, opts ListOptions) ([]models.Food, error) {
	findOpts := options.Find()
	if opts.SortByExpiry {
		findOpts.SetSort(bson.D{{Key: models.FieldExpiry, Value: 1}})
	}
	return m.find(ctx, m.foods, bson.M{}, findOpts)
}

func (m *Mongo) FeaturedFoods(ctx context.Context) ([]models.Food, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: models.FieldQuantity, Value: -1}}).
		SetLimit(FeaturedLimit)
	return m.find(ctx, m.foods, bson.M{}, findOpts)
}

func (m *Mongo) GetFood(ctx context.Context, id primitive.ObjectID) (models.Food, error) {
	var food models.Food
	err := m.foods.FindOne(ctx, bson.M{models.FieldID: id}).Decode(&food)
	if err != nil {
		return nil, translate(err, "find food")
	}
	return food, nil
}

func (m *Mongo) FoodsByDonator(ctx context.Context, email string) ([]models.Food, error) {
	return m.find(ctx, m.foods, bson.M{models.FieldDonatorEmail: email}, options.Find())
}

func (m *Mongo) DeleteFood(ctx context.Context, id primitive.ObjectID) (models.Food, error) {
	var food models.Food
	err := m.foods.FindOneAndDelete(ctx, bson.M{models.FieldID: id}).Decode(&food)
	if err != nil {
		return nil, translate(err, "delete food")
	}
	return food, nil
}

func (m *Mongo) RequestFood(ctx context.Context, id primitive.ObjectID, userEmail string, at time.Time) (models.Food, error) {
	claim := func(ctx context.Context) (models.Food, error) {
		// Lookup and removal are one step; a concurrent claim finds nothing.
		var food models.Food
		err := m.foods.FindOneAndDelete(ctx, bson.M{models.FieldID: id}).Decode(&food)
		if err != nil {
			return nil, translate(err, "claim food")
		}

		food[models.FieldStatus] = models.StatusRequested
		food[models.FieldRequestedBy] = userEmail
		food[models.FieldRequestedAt] = at

		if _, err := m.requested.InsertOne(ctx, food); err != nil {
			return nil, fmt.Errorf("insert requested food: %w", err)
		}
		return food, nil
	}

	if !m.useTransactions {
		return claim(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return claim(sc)
	})
	if err != nil {
		return nil, err
	}
	return res.(models.Food), nil
}

func (m *Mongo) RequestsByUser(ctx context.Context, email string) ([]models.Food, error) {
	return m.find(ctx, m.requested, bson.M{models.FieldRequestedBy: email}, options.Find())
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) find(ctx context.Context, col *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]models.Food, error) {
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}

	foods := []models.Food{}
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	return foods, nil
}

func translate(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
