package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBConnectionString string        `envconfig:"DB_CONNECTION_STRING" required:"true"`
	DBMaxOpenConns     int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns     int           `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	DBConnMaxIdleTime  time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"5m"`

	// Either the secret itself or a Secret Manager resource holding it
	JWTSecret         string `envconfig:"SUPABASE_JWT_SECRET"`
	JWTSecretResource string `envconfig:"JWT_SECRET_RESOURCE"`

	// Error telemetry, disabled when TelemetryTopic is empty
	GCPProjectID   string `envconfig:"GCP_PROJECT_ID"`
	TelemetryTopic string `envconfig:"TELEMETRY_TOPIC"`
	ProjectID      string `envconfig:"PROJECT_ID"`

	// Outline export, disabled when S3Bucket is empty
	S3URL       string `envconfig:"S3_URL"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that envconfig tags cannot express.
func (c *Config) Validate() error {
	if c.JWTSecret == "" && c.JWTSecretResource == "" {
		return errors.New("one of SUPABASE_JWT_SECRET or JWT_SECRET_RESOURCE is required")
	}
	if c.TelemetryTopic != "" && c.GCPProjectID == "" {
		return errors.New("GCP_PROJECT_ID is required when TELEMETRY_TOPIC is set")
	}
	if c.JWTSecretResource != "" && c.GCPProjectID == "" {
		return errors.New("GCP_PROJECT_ID is required when JWT_SECRET_RESOURCE is set")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) TelemetryEnabled() bool {
	return c.TelemetryTopic != ""
}

func (c *Config) ExportEnabled() bool {
	return c.S3Bucket != ""
}
