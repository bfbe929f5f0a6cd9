package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	middleware "github.com/phillip/foodshare-go/middleware"
	store "github.com/phillip/foodshare-go/store"
	utils "github.com/phillip/foodshare-go/utils"
)

// Notifier tells donors their food was claimed.
type Notifier interface {
	NotifyRequested(ctx context.Context, donorEmail, foodName, requester string) error
}

// Deps is shared by every handler. Images and Notifier are optional.
type Deps struct {
	Foods    store.FoodStore
	Images   utils.ImageStore
	Notifier Notifier
	Log      *zap.Logger
	Timeout  time.Duration
}

func (d *Deps) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d.Timeout)
}

func parseID(c *gin.Context, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		_ = c.Error(&middleware.BadRequest{Message: "invalid food id"})
		return primitive.NilObjectID, false
	}
	return id, true
}
