package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`

	MaxSlots     int `env:"MAX_SLOTS"       envDefault:"4"   validate:"min=1,max=16"`
	RoomIdMaxLen int `env:"ROOM_ID_MAX_LEN" envDefault:"32"  validate:"min=1,max=128"`
	NameMaxLen   int `env:"NAME_MAX_LEN"    envDefault:"24"  validate:"min=1,max=128"`
	ChatMaxLen   int `env:"CHAT_MAX_LEN"    envDefault:"280" validate:"min=1,max=4096"`

	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"30s" validate:"min=1s"`
	PingPeriod   time.Duration `env:"PING_PERIOD"   envDefault:"3s"  validate:"min=1s"`

	RedisCatalogHost string `env:"REDIS_CATALOG_HOST" envDefault:"localhost"`
	RedisCatalogPort uint16 `env:"REDIS_CATALOG_PORT" envDefault:"6379" validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"coplay_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"coplay_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"coplay_db"`

	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"60s" validate:"min=1s"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
