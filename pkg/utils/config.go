package utils

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Broker      BrokerConfig
	Reservation ReservationConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
	Migrate  bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TopologyTTL bounds how long a cached stop sequence lives
	TopologyTTL time.Duration
}

type BrokerConfig struct {
	URL   string
	Queue string
}

// ReservationConfig holds the tunables of the reservation engine
type ReservationConfig struct {
	HoldTTL                time.Duration
	SweepInterval          time.Duration
	DefaultStandingCeiling int
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "train-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TOPOLOGY_CACHE_TTL_MINUTES", 60)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "reservation.holds.released")
	v.SetDefault("HOLD_TTL_MINUTES", 10)
	v.SetDefault("SWEEP_INTERVAL_SECONDS", 60)
	v.SetDefault("STANDING_CEILING_DEFAULT", 0)

	// .env is optional, the environment always wins
	if _, err := os.Stat(".env"); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	return &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			Migrate:  v.GetBool("DB_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:        v.GetString("REDIS_ADDR"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			TopologyTTL: time.Duration(v.GetInt("TOPOLOGY_CACHE_TTL_MINUTES")) * time.Minute,
		},
		Broker: BrokerConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		Reservation: ReservationConfig{
			HoldTTL:                time.Duration(v.GetInt("HOLD_TTL_MINUTES")) * time.Minute,
			SweepInterval:          time.Duration(v.GetInt("SWEEP_INTERVAL_SECONDS")) * time.Second,
			DefaultStandingCeiling: v.GetInt("STANDING_CEILING_DEFAULT"),
		},
	}, nil
}
