package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	middleware "github.com/phillip/foodshare-go/middleware"
	models "github.com/phillip/foodshare-go/models"
	store "github.com/phillip/foodshare-go/store"
	utils "github.com/phillip/foodshare-go/utils"
)

const uploadTimeout = 60 * time.Second

// ---------------- CREATE ----------------
func AddFood(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var food models.Food
		if err := c.ShouldBindJSON(&food); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		if food == nil {
			_ = c.Error(&middleware.BadRequest{Message: "food must be a JSON object"})
			return
		}

		ctx, cancel := d.withTimeout(c)
		defer cancel()

		id, err := d.Foods.AddFood(ctx, food)
		if err != nil {
			_ = c.Error(err).SetMeta("could not add food")
			return
		}

		c.JSON(http.StatusOK, models.InsertResult{Acknowledged: true, InsertedID: id})
	}
}

// ---------------- LIST ----------------
func ListFoods(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.withTimeout(c)
		defer cancel()

		opts := store.ListOptions{SortByExpiry: c.Query("sortBy") == "expiry"}
		foods, err := d.Foods.ListFoods(ctx, opts)
		if err != nil {
			_ = c.Error(err).SetMeta("could not fetch foods")
			return
		}

		c.JSON(http.StatusOK, foods)
	}
}

func FeaturedFoods(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.withTimeout(c)
		defer cancel()

		foods, err := d.Foods.FeaturedFoods(ctx)
		if err != nil {
			_ = c.Error(err).SetMeta("could not fetch featured foods")
			return
		}

		c.JSON(http.StatusOK, foods)
	}
}

func MyFoods(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.withTimeout(c)
		defer cancel()

		foods, err := d.Foods.FoodsByDonator(ctx, c.Query("email"))
		if err != nil {
			_ = c.Error(err).SetMeta("could not fetch your foods")
			return
		}

		c.JSON(http.StatusOK, foods)
	}
}

// ---------------- GET ----------------
func GetFood(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		ctx, cancel := d.withTimeout(c)
		defer cancel()

		food, err := d.Foods.GetFood(ctx, id)
		if err != nil {
			_ = c.Error(err).SetMeta("food not found")
			return
		}

		if etag, err := utils.GenerateETag(food); err == nil {
			if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
				c.Status(http.StatusNotModified)
				return
			}
			c.Header("ETag", etag)
		}

		c.JSON(http.StatusOK, food)
	}
}

// ---------------- DELETE ----------------
func DeleteFood(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		ctx, cancel := d.withTimeout(c)
		defer cancel()

		food, err := d.Foods.DeleteFood(ctx, id)
		if err != nil {
			_ = c.Error(err).SetMeta("food not found")
			return
		}

		if img := food.Image(); d.Images != nil && img != "" && d.Images.Owns(img) {
			if err := d.Images.Delete(ctx, img); err != nil {
				d.Log.Warn("could not delete food image",
					zap.String("food_id", id.Hex()),
					zap.String("image", img),
					zap.Error(err),
				)
			}
		}

		c.JSON(http.StatusOK, models.DeleteResult{Acknowledged: true, DeletedCount: 1})
	}
}

// ---------------- UPLOAD ----------------
func UploadImage(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Images == nil {
			_ = c.Error(middleware.ErrUnavailable).SetMeta("image uploads are not configured")
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			_ = c.Error(&middleware.BadRequest{Message: "image file is required"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			_ = c.Error(err).SetMeta("failed to open file")
			return
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
		defer cancel()

		url, err := d.Images.Upload(ctx, file, fileHeader.Filename)
		if err != nil {
			_ = c.Error(err).SetMeta("image upload failed")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}
