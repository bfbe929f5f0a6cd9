// Package store persists food listings and claimed listings.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/foodshare-go/models"
)

// ErrNotFound is returned when no listing matches the given identifier.
var ErrNotFound = errors.New("not found")

// FeaturedLimit caps the featured listing query.
const FeaturedLimit = 6

type ListOptions struct {
	// SortByExpiry orders listings by expiry date, soonest first.
	SortByExpiry bool
}

// FoodStore is the handle shared by every request handler.
type FoodStore interface {
	AddFood(ctx context.Context, food models.Food) (primitive.ObjectID, error)
	ListFoods(ctx context.Context, opts ListOptions) ([]models.Food, error)
	FeaturedFoods(ctx context.Context) ([]models.Food, error)
	GetFood(ctx context.Context, id primitive.ObjectID) (models.Food, error)
	FoodsByDonator(ctx context.Context, email string) ([]models.Food, error)
	// DeleteFood removes a listing and returns what was removed.
	DeleteFood(ctx context.Context, id primitive.ObjectID) (models.Food, error)
	// RequestFood moves a listing into the requested collection, stamped with
	// the requester. Only one caller can win a given listing.
	RequestFood(ctx context.Context, id primitive.ObjectID, userEmail string, at time.Time) (models.Food, error)
	RequestsByUser(ctx context.Context, email string) ([]models.Food, error)
	Ping(ctx context.Context) error
}
