package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Pocketly"`
		Port int    `envconfig:"PORT" default:"8080"`
		// Timezone decides where calendar days and months start. Empty means server-local.
		Timezone string `envconfig:"APP_TIMEZONE" default:""`
	}

	DB struct {
		Host         string        `envconfig:"DB_HOST" default:"localhost"`
		Port         int           `envconfig:"DB_PORT" default:"5432"`
		User         string        `envconfig:"DB_USER" default:"postgres"`
		Password     string        `envconfig:"DB_PASSWORD" default:""`
		Name         string        `envconfig:"DB_NAME" default:"pocketly"`
		SSLMode      string        `envconfig:"DB_SSLMODE" default:"disable"`
		MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnLifetime time.Duration `envconfig:"DB_CONN_LIFETIME" default:"5m"`
		Migrate      bool          `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
		Issuer    string `envconfig:"JWT_ISSUER" default:"pocketly"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Notifications struct {
		QueueSize    int           `envconfig:"NOTIFICATIONS_QUEUE_SIZE" default:"256"`
		WriteTimeout time.Duration `envconfig:"NOTIFICATIONS_WRITE_TIMEOUT" default:"5s"`
	}

	Gemini struct {
		APIKey            string        `envconfig:"GEMINI_API_KEY"`
		Model             string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
		BaseURL           string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
		Timeout           time.Duration `envconfig:"GEMINI_TIMEOUT" default:"30s"`
		RequestsPerMinute int           `envconfig:"GEMINI_REQUESTS_PER_MINUTE" default:"10"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Location loads App.Timezone, falling back to server-local time when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
