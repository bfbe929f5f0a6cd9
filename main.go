package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "github.com/phillip/foodshare-go/config"
	controllers "github.com/phillip/foodshare-go/controllers"
	logger "github.com/phillip/foodshare-go/logger"
	routes "github.com/phillip/foodshare-go/routes"
	store "github.com/phillip/foodshare-go/store"
	utils "github.com/phillip/foodshare-go/utils"
)

const connectTimeout = 20 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log, _ := logger.New(false)
		log.Fatal("invalid configuration", zap.Error(err))
	}

	log, sync := logger.New(cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()

	if err != nil {
		log.Error("server stopped", zap.Error(err))
		_ = sync()
		os.Exit(1)
	}
	_ = sync()
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	client, err := cfg.Connect(connectCtx)
	cancel()
	if err != nil {
		return err
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.DBName))

	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn("mongo disconnect failed", zap.Error(err))
			return
		}
		log.Info("mongo disconnected")
	}()

	deps := &controllers.Deps{
		Foods: store.NewMongo(client, store.Options{
			Database:            cfg.DBName,
			FoodCollection:      cfg.FoodCollection,
			RequestedCollection: cfg.RequestedCollection,
			UseTransactions:     cfg.UseTransactions,
		}),
		Log:     log,
		Timeout: cfg.Timeout,
	}
	if cfg.CloudinaryEnabled() {
		images, err := utils.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey,
			cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			return err
		}
		deps.Images = images
	} else {
		log.Info("cloudinary not configured, image uploads disabled")
	}
	if cfg.MailerEnabled() {
		deps.Notifier = utils.NewMailer(cfg.ZeptoAPIURL, cfg.ZeptoAPIKey, cfg.EmailFrom)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
