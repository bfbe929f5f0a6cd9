package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	controllers "github.com/phillip/foodshare-go/controllers"
	middleware "github.com/phillip/foodshare-go/middleware"
)

// NewRouter builds the engine with logging, recovery, CORS and error
// translation in front of the routes.
func NewRouter(d *controllers.Deps, corsOrigins []string) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(ginzap.GinzapWithConfig(d.Log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{zap.String("request_id", c.GetString(middleware.RequestIDKey))}
		},
	}))
	r.Use(ginzap.RecoveryWithZap(d.Log, true))
	r.Use(cors.New(corsConfig(corsOrigins)))
	r.Use(middleware.ErrorHandler(d.Log))

	SetupRoutes(r, d)
	return r
}

func SetupRoutes(r *gin.Engine, d *controllers.Deps) {
	r.GET("/", controllers.Home())
	r.GET("/health", controllers.Health(d))

	// listings
	r.POST("/add-food", controllers.AddFood(d))
	r.GET("/food", controllers.ListFoods(d))
	r.GET("/food/:id", controllers.GetFood(d))
	r.GET("/featured-foods", controllers.FeaturedFoods(d))
	r.GET("/my-foods", controllers.MyFoods(d))
	r.DELETE("/foods/:id", controllers.DeleteFood(d))
	r.POST("/upload-image", controllers.UploadImage(d))

	// claims
	r.POST("/request-food", controllers.RequestFood(d))
	r.GET("/my-requests", controllers.MyRequests(d))
}

func corsConfig(origins []string) cors.Config {
	conf := cors.DefaultConfig()
	conf.AllowAllOrigins = len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			conf.AllowAllOrigins = true
		}
	}
	if !conf.AllowAllOrigins {
		conf.AllowOrigins = origins
	}
	conf.AddAllowHeaders(middleware.RequestIDHeader, "If-None-Match")
	conf.AddExposeHeaders(middleware.RequestIDHeader, "ETag")
	conf.MaxAge = 12 * time.Hour
	return conf
}
