package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment,
// optional .env files and an optional config.yaml.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	AppPort         string        `mapstructure:"APP_PORT" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DBDriver      string `mapstructure:"DB_DRIVER" validate:"required,oneof=postgres sqlite mongo memory"`
	DatabaseDSN   string `mapstructure:"DATABASE_DSN" validate:"required_if=DBDriver postgres,required_if=DBDriver sqlite"`
	MongoURI      string `mapstructure:"MONGO_URI" validate:"required_if=DBDriver mongo"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE" validate:"required_if=DBDriver mongo"`

	JWTSecret string        `mapstructure:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL" validate:"required"`

	UploadDir    string `mapstructure:"UPLOAD_DIR" validate:"required"`
	StaticPrefix string `mapstructure:"STATIC_PREFIX" validate:"required,startswith=/"`
	BodyLimitMB  int    `mapstructure:"BODY_LIMIT_MB" validate:"gte=1,lte=100"`

	PlantNetURL    string `mapstructure:"PLANTNET_URL" validate:"required,url"`
	PlantNetAPIKey string `mapstructure:"PLANTNET_API_KEY"`
	WikimediaURL   string `mapstructure:"WIKIMEDIA_URL" validate:"required,url"`

	CORSOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS" validate:"required"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL" validate:"omitempty,url"`
}

var (
	keys = []string{
		"APP_ENV", "APP_PORT", "SHUTDOWN_TIMEOUT",
		"LOG_LEVEL", "LOG_FORMAT",
		"DB_DRIVER", "DATABASE_DSN", "MONGO_URI", "MONGO_DATABASE",
		"JWT_SECRET", "TOKEN_TTL",
		"UPLOAD_DIR", "STATIC_PREFIX", "BODY_LIMIT_MB",
		"PLANTNET_URL", "PLANTNET_API_KEY", "WIKIMEDIA_URL",
		"CORS_ALLOWED_ORIGINS", "RABBITMQ_URL",
	}
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Load reads .env files if present, applies defaults, binds env vars and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	c.StaticPrefix = "/" + strings.Trim(c.StaticPrefix, "/")

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=herboscope port=5432 sslmode=disable")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "herboscope")
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("UPLOAD_DIR", "./uploads/plantImages")
	v.SetDefault("STATIC_PREFIX", "/plantImages")
	v.SetDefault("BODY_LIMIT_MB", 10)
	v.SetDefault("PLANTNET_URL", "https://my-api.plantnet.org")
	v.SetDefault("WIKIMEDIA_URL", "https://commons.wikimedia.org/w/api.php")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
}
