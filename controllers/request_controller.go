package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	models "github.com/phillip/foodshare-go/models"
)

// RequestFood claims a listing for the given user. Only the first claim on a
// listing succeeds; later ones see 404.
func RequestFood(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.FoodRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}

		id, ok := parseID(c, input.FoodID)
		if !ok {
			return
		}

		ctx, cancel := d.withTimeout(c)
		defer cancel()

		food, err := d.Foods.RequestFood(ctx, id, input.UserEmail, time.Now().UTC())
		if err != nil {
			_ = c.Error(err).SetMeta("food not found")
			return
		}

		d.notifyDonor(ctx, food, input.UserEmail)

		c.JSON(http.StatusOK, models.InsertResult{Acknowledged: true, InsertedID: id})
	}
}

func MyRequests(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.withTimeout(c)
		defer cancel()

		foods, err := d.Foods.RequestsByUser(ctx, c.Query("email"))
		if err != nil {
			_ = c.Error(err).SetMeta("could not fetch your requests")
			return
		}

		c.JSON(http.StatusOK, foods)
	}
}

// notifyDonor is best effort, the claim already happened.
func (d *Deps) notifyDonor(ctx context.Context, food models.Food, requester string) {
	donor := food.DonatorEmail()
	if d.Notifier == nil || donor == "" {
		return
	}
	if err := d.Notifier.NotifyRequested(ctx, donor, food.Name(), requester); err != nil {
		d.Log.Warn("could not notify donor",
			zap.String("donor", donor),
			zap.String("requester", requester),
			zap.Error(err),
		)
	}
}
