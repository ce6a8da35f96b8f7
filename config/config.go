package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultAdminEmail = "admin@example.com"
	defaultAdminPass  = "Admin123!"
	defaultAdminPhone = "9999999999"
)

type Config struct {
	MongoURI  string
	DBName    string
	Port      string
	ClientURL string
	Env       string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail string
	AdminPass  string
	AdminPhone string

	PaymentProvider    string // "simulated" or "midtrans"
	MidtransServerKey  string
	MidtransProduction bool

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	ZeptoAPIURL string
	ZeptoAPIKey string
	EmailFrom   string

	LogLevel string
	LogDev   bool

	MongoClient *mongo.Client
}

// Load reads the environment, picking up a .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := parseTTL(getEnv("JWT_TTL", "7d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}

	cfg := &Config{
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:    getEnv("DB_NAME", "frolic"),
		Port:      getEnv("PORT", "5000"),
		ClientURL: os.Getenv("CLIENT_URL"),
		Env:       getEnv("NODE_ENV", "development"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    ttl,

		AdminEmail: getEnv("ADMIN_EMAIL", defaultAdminEmail),
		AdminPass:  getEnv("ADMIN_PASS", defaultAdminPass),
		AdminPhone: getEnv("ADMIN_PHONE", defaultAdminPhone),

		PaymentProvider:    strings.ToLower(getEnv("PAYMENT_PROVIDER", "simulated")),
		MidtransServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransProduction: getBool("MIDTRANS_PRODUCTION", false),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		ZeptoAPIURL: os.Getenv("ZEPTO_API_URL"),
		ZeptoAPIKey: os.Getenv("ZEPTO_API_KEY"),
		EmailFrom:   os.Getenv("EMAIL_FROM"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	cfg.LogDev = getBool("LOG_DEV", !cfg.IsProduction())

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	// the built-in admin password is for local development only
	if c.IsProduction() && c.AdminPass == defaultAdminPass {
		return fmt.Errorf("ADMIN_PASS must be set in production")
	}
	switch c.PaymentProvider {
	case "simulated":
	case "midtrans":
		if c.MidtransServerKey == "" {
			return fmt.Errorf("MIDTRANS_SERVER_KEY is required when PAYMENT_PROVIDER=midtrans")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// AllowedOrigins is nil outside production, meaning any origin.
func (c *Config) AllowedOrigins() []string {
	if !c.IsProduction() {
		return nil
	}
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if c.ClientURL != "" {
		origins = append([]string{strings.TrimRight(c.ClientURL, "/")}, origins...)
	}
	return origins
}

// OpenMongo builds the client and stores it on c. The driver dials lazily,
// so this does not touch the network; PingMongo does.
func (c *Config) OpenMongo() error {
	opts := options.Client().
		ApplyURI(c.MongoURI).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(45 * time.Second)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	c.MongoClient = client
	return nil
}

// PingMongo checks the primary is reachable.
func (c *Config) PingMongo(ctx context.Context) error {
	if c.MongoClient == nil {
		return fmt.Errorf("mongo ping: client not opened")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.MongoClient.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

func (c *Config) Database() *mongo.Database {
	return c.MongoClient.Database(c.DBName)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

// parseTTL accepts Go durations plus a "d" day suffix ("7d").
func parseTTL(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
