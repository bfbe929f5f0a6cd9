package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Config struct {
	Port    string
	AppEnv  string
	Timeout time.Duration
	// ShutdownTimeout bounds draining in-flight requests and closing the store.
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// --- MongoDB ---
	MongoURI            string
	DBUser              string
	DBPass              string
	DBHost              string
	DBName              string
	FoodCollection      string
	RequestedCollection string
	UseTransactions     bool

	// --- Cloudinary ---
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	// --- ZeptoMail ---
	ZeptoAPIURL string
	ZeptoAPIKey string
	EmailFrom   string
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// a missing .env is fine, the variables may already be exported
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_HOST", "cluster0.9clsv.mongodb.net")
	v.SetDefault("DB_NAME", "foodShare")
	v.SetDefault("FOOD_COLLECTION", "food")
	v.SetDefault("REQUESTED_COLLECTION", "requestedFood")
	v.SetDefault("USE_TRANSACTIONS", true)
	v.SetDefault("CLOUDINARY_FOLDER", "foodshare")

	cfg := &Config{
		Port:                v.GetString("PORT"),
		AppEnv:              v.GetString("APP_ENV"),
		Timeout:             v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout:     v.GetDuration("SHUTDOWN_TIMEOUT"),
		CORSOrigins:         splitList(v.GetString("CORS_ORIGINS")),
		MongoURI:            v.GetString("MONGODB_URI"),
		DBUser:              v.GetString("DB_USER"),
		DBPass:              v.GetString("DB_PASS"),
		DBHost:              v.GetString("DB_HOST"),
		DBName:              v.GetString("DB_NAME"),
		FoodCollection:      v.GetString("FOOD_COLLECTION"),
		RequestedCollection: v.GetString("REQUESTED_COLLECTION"),
		UseTransactions:     v.GetBool("USE_TRANSACTIONS"),
		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    v.GetString("CLOUDINARY_FOLDER"),
		ZeptoAPIURL:         v.GetString("ZEPTO_API_URL"),
		ZeptoAPIKey:         v.GetString("ZEPTO_API_KEY"),
		EmailFrom:           v.GetString("EMAIL_FROM"),
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q", v.GetString("REQUEST_TIMEOUT"))
	}
	if cfg.MongoURI == "" && (cfg.DBUser == "" || cfg.DBPass == "") {
		return nil, errors.New("MONGODB_URI or DB_USER and DB_PASS required")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ConnectionURI returns MONGODB_URI when set, otherwise the Atlas URI built
// from the database credentials.
func (c *Config) ConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=Cluster0",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPass), c.DBHost)
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) MailerEnabled() bool {
	return c.ZeptoAPIURL != "" && c.ZeptoAPIKey != "" && c.EmailFrom != ""
}

// Connect opens the shared client and verifies the deployment answers.
// The caller owns the client and must Disconnect it.
func (c *Config) Connect(ctx context.Context) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	opts := options.Client().ApplyURI(c.ConnectionURI()).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
