package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Apify    ApifyConfig    `toml:"apify"`
	JWT      JWTConfig      `toml:"jwt"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

type AppConfig struct {
	AppName     string `toml:"name"`
	Environment string `toml:"env"`
	HTTPPort    string `toml:"http_port"`
}

type DatabaseConfig struct {
	DBHost     string `toml:"host"`
	DBPort     string `toml:"port"`
	DBName     string `toml:"name"`
	DBUser     string `toml:"user"`
	DBPassword string `toml:"password"`
	DBSSLMode  string `toml:"ssl_mode"`

	AutoMigrate   bool   `toml:"auto_migrate"`
	MigrationsDir string `toml:"migrations_dir"`

	ConnectTimeout        time.Duration `toml:"connect_timeout"`
	PoolMaxConns          int32         `toml:"pool_max_conns"`
	PoolMinConns          int32         `toml:"pool_min_conns"`
	PoolMaxConnLifetime   time.Duration `toml:"pool_max_conn_lifetime"`
	PoolMaxConnIdleTime   time.Duration `toml:"pool_max_conn_idle_time"`
	PoolHealthCheckPeriod time.Duration `toml:"pool_health_check_period"`
}

type RedisConfig struct {
	Host     string        `toml:"host"`
	Port     string        `toml:"port"`
	Password string        `toml:"password"`
	TTL      time.Duration `toml:"ttl"`
}

// ApifyConfig carries the actor credentials. Token and ActorID are both
// required for the actor client to do anything.
type ApifyConfig struct {
	BaseURL string        `toml:"base_url"`
	Token   string        `toml:"token"`
	ActorID string        `toml:"actor_id"`
	Timeout time.Duration `toml:"timeout"`
}

type JWTConfig struct {
	Secret    string        `toml:"secret"`
	ExpiresIn time.Duration `toml:"expires_in"`
}

type PipelineConfig struct {
	StallAfter time.Duration `toml:"stall_after"`
}

const configFileEnv = "RECIPE_SYNC_CONFIG"

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load builds the Config from an optional TOML file (RECIPE_SYNC_CONFIG)
// overlaid with environment variables. Environment always wins.
func Load() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	var missing []string
	req := func(key, current string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			v = current
		}
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, current string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return current
	}

	cfg.App.AppName = req("APP_NAME", cfg.App.AppName)
	cfg.App.Environment = req("APP_ENV", cfg.App.Environment)
	cfg.App.HTTPPort = req("HTTP_PORT", cfg.App.HTTPPort)

	cfg.Database.DBHost = opt("DB_HOST", cfg.Database.DBHost)
	cfg.Database.DBPort = opt("DB_PORT", cfg.Database.DBPort)
	cfg.Database.DBName = opt("DB_NAME", cfg.Database.DBName)
	cfg.Database.DBUser = opt("DB_USER", cfg.Database.DBUser)
	cfg.Database.DBPassword = opt("DB_PASSWORD", cfg.Database.DBPassword)
	cfg.Database.DBSSLMode = opt("DB_SSL_MODE", cfg.Database.DBSSLMode)
	cfg.Database.MigrationsDir = opt("DB_MIGRATIONS_DIR", cfg.Database.MigrationsDir)
	cfg.Database.AutoMigrate = envBool("DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)
	cfg.Database.ConnectTimeout = envDuration("DB_CONNECT_TIMEOUT", cfg.Database.ConnectTimeout)
	cfg.Database.PoolMaxConns = int32(envInt("DB_POOL_MAX_CONNS", int(cfg.Database.PoolMaxConns)))
	cfg.Database.PoolMinConns = int32(envInt("DB_POOL_MIN_CONNS", int(cfg.Database.PoolMinConns)))

	cfg.Redis.Host = opt("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = opt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = opt("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.TTL = envSeconds("REDIS_TTL", cfg.Redis.TTL)

	cfg.Apify.BaseURL = opt("APIFY_BASE_URL", cfg.Apify.BaseURL)
	cfg.Apify.Token = opt("APIFY_API_TOKEN", cfg.Apify.Token)
	cfg.Apify.ActorID = opt("APIFY_ACTOR_ID", cfg.Apify.ActorID)
	cfg.Apify.Timeout = envDuration("APIFY_TIMEOUT", cfg.Apify.Timeout)

	cfg.JWT.Secret = opt("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.ExpiresIn = envDuration("JWT_EXPIRES_IN", cfg.JWT.ExpiresIn)

	cfg.Pipeline.StallAfter = envDuration("PIPELINE_STALL_AFTER", cfg.Pipeline.StallAfter)

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

// Defaults returns the values used when neither the config file nor the
// environment sets a key.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			DBSSLMode:      "disable",
			MigrationsDir:  "migrations",
			ConnectTimeout: 5 * time.Second,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
			TTL:  600 * time.Second,
		},
		Apify: ApifyConfig{
			BaseURL: "https://api.apify.com/v2",
			Timeout: 15 * time.Second,
		},
		JWT: JWTConfig{
			ExpiresIn: time.Hour,
		},
		Pipeline: PipelineConfig{
			StallAfter: 30 * time.Minute,
		},
	}
}

// Enabled reports whether both actor credentials are present.
func (c ApifyConfig) Enabled() bool {
	return strings.TrimSpace(c.Token) != "" && strings.TrimSpace(c.ActorID) != ""
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// envSeconds accepts either a bare number of seconds or a Go duration.
func envSeconds(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		if v <= 0 {
			return fallback
		}
		return time.Duration(v) * time.Second
	}
	return envDuration(key, fallback)
}
