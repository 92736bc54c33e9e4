package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendSplit    = "split"
)

// Auth providers
const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
	AuthNone     = "none"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	// LogFormat is console or json
	LogFormat string

	StoreBackend    string
	PostgresConnStr string
	MongoURI        string
	MongoDatabase   string
	StoreTimeout    time.Duration

	AuthProvider            string
	FirebaseCredentialsPath string
	JWTSecret               string

	GeneratorURL     string
	GeneratorTimeout time.Duration
	GeneratorRPS     float64
	GeneratorBurst   int
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "console")),

		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "componentfeed"),

		AuthProvider:            strings.ToLower(getEnv("AUTH_PROVIDER", AuthJWT)),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		JWTSecret:               getEnv("JWT_SECRET", ""),

		GeneratorURL: getEnv("GENERATOR_URL", ""),
	}

	var err error
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.GeneratorTimeout, err = getDuration("GENERATOR_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.GeneratorRPS, err = getFloat("GENERATOR_RPS", 0.2); err != nil {
		return nil, err
	}
	if cfg.GeneratorBurst, err = getInt("GENERATOR_BURST", 3); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings that cannot work together
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.PostgresConnStr == "" {
			return fmt.Errorf("POSTGRES_CONN_STR is required for STORE_BACKEND=%s", c.StoreBackend)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for STORE_BACKEND=%s", c.StoreBackend)
		}
	case BackendSplit:
		if c.PostgresConnStr == "" || c.MongoURI == "" {
			return fmt.Errorf("POSTGRES_CONN_STR and MONGO_URI are required for STORE_BACKEND=%s", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.AuthProvider {
	case AuthNone:
		if c.IsProduction() {
			return fmt.Errorf("AUTH_PROVIDER=none is not allowed in production")
		}
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required for AUTH_PROVIDER=jwt")
		}
	case AuthFirebase:
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json")
	}
	return nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
