// Package testutil holds helpers shared by handler and router tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/foodshare-go/models"
	"github.com/phillip/foodshare-go/store"
)

// MemStore is an in-memory store.FoodStore. Insertion order stands in for
// the natural order of a collection.
type MemStore struct {
	mu        sync.Mutex
	foods     []models.Food
	requested []models.Food

	// Err, when set, is returned by every call.
	Err error
}

var _ store.FoodStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) AddFood(_ context.Context, food models.Food) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return primitive.NilObjectID, m.Err
	}

	id := food.EnsureID()
	if index(m.foods, id) >= 0 {
		return primitive.NilObjectID, ErrDuplicateID
	}
	m.foods = append(m.foods, clone(food))
	return id, nil
}

func (m *MemStore) ListFoods(_ context.Context, opts store.ListOptions) ([]models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := cloneAll(m.foods)
	if opts.SortByExpiry {
		sort.SliceStable(out, func(i, j int) bool {
			return fmt.Sprint(out[i][models.FieldExpiry]) < fmt.Sprint(out[j][models.FieldExpiry])
		})
	}
	return out, nil
}

func (m *MemStore) FeaturedFoods(_ context.Context) ([]models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := cloneAll(m.foods)
	sort.SliceStable(out, func(i, j int) bool {
		return quantity(out[i]) > quantity(out[j])
	})
	if len(out) > store.FeaturedLimit {
		out = out[:store.FeaturedLimit]
	}
	return out, nil
}

func (m *MemStore) GetFood(_ context.Context, id primitive.ObjectID) (models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	if i := index(m.foods, id); i >= 0 {
		return clone(m.foods[i]), nil
	}
	return nil, store.ErrNotFound
}

func (m *MemStore) FoodsByDonator(_ context.Context, email string) ([]models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := []models.Food{}
	for _, f := range m.foods {
		if f.DonatorEmail() == email {
			out = append(out, clone(f))
		}
	}
	return out, nil
}

func (m *MemStore) DeleteFood(_ context.Context, id primitive.ObjectID) (models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	return m.remove(id)
}

func (m *MemStore) RequestFood(_ context.Context, id primitive.ObjectID, userEmail string, at time.Time) (models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	food, err := m.remove(id)
	if err != nil {
		return nil, err
	}
	food[models.FieldStatus] = models.StatusRequested
	food[models.FieldRequestedBy] = userEmail
	food[models.FieldRequestedAt] = at
	m.requested = append(m.requested, clone(food))
	return food, nil
}

func (m *MemStore) RequestsByUser(_ context.Context, email string) ([]models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := []models.Food{}
	for _, f := range m.requested {
		if f[models.FieldRequestedBy] == email {
			out = append(out, clone(f))
		}
	}
	return out, nil
}

func (m *MemStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

// Requested returns every claimed listing.
func (m *MemStore) Requested() []models.Food {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.requested)
}

func (m *MemStore) remove(id primitive.ObjectID) (models.Food, error) {
	i := index(m.foods, id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	food := m.foods[i]
	m.foods = append(m.foods[:i], m.foods[i+1:]...)
	return food, nil
}

func index(foods []models.Food, id primitive.ObjectID) int {
	for i, f := range foods {
		if got, ok := f.ID(); ok && got == id {
			return i
		}
	}
	return -1
}

func quantity(f models.Food) float64 {
	switch q := f[models.FieldQuantity].(type) {
	case float64:
		return q
	case int:
		return float64(q)
	case int32:
		return float64(q)
	case int64:
		return float64(q)
	}
	return 0
}

func clone(f models.Food) models.Food {
	out := make(models.Food, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func cloneAll(foods []models.Food) []models.Food {
	out := make([]models.Food, 0, len(foods))
	for _, f := range foods {
		out = append(out, clone(f))
	}
	return out
}

// ErrDuplicateID mirrors a unique index violation on _id.
var ErrDuplicateID = errors.New("E11000 duplicate key error")

// ErrStoreDown is a convenient failure for MemStore.Err.
var ErrStoreDown = errors.New("server selection timeout")
