package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "Hello from fOOdShare Server....")
	}
}

func Health(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := d.withTimeout(c)
		defer cancel()

		if err := d.Foods.Ping(ctx); err != nil {
			d.Log.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
