package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	HTTPAddr        string
	JWTSecret       string
	JWTUser         string
	JWTPassword     string
	TLSCertFile     string
	TLSKeyFile      string
	CalendarBaseURL string
	CalendarTimeout time.Duration
	CacheDuration   time.Duration
	CacheBackend    string
	DataDir         string
	RedisAddr       string
	WindowStartDay  int
	WindowEndDay    int
	DedupeInflight  bool
	WarmupSchedule  string
	CatalogFile     string
	LogLevel        string
	LogPretty       bool
}

// CachePath is the sqlite file holding the Ramadan period cache.
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "ramadan_cache.db")
}

func Load() *Config {
	v := viper.New()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("auth_user", "operator")
	v.SetDefault("auth_pass", "operator123")
	v.SetDefault("calendar_base_url", "https://api.aladhan.com/v1")
	v.SetDefault("calendar_timeout", "5s")
	v.SetDefault("cache_duration", "720h")
	v.SetDefault("cache_backend", BackendSQLite)
	v.SetDefault("data_dir", "./data")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("pricing_window_start", 18)
	v.SetDefault("pricing_window_end", 30)
	v.SetDefault("dedupe_inflight", false)
	v.SetDefault("warmup_schedule", "@daily")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	if path := os.Getenv("BOOKING_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/booking")
	}

	if err := v.ReadInConfig(); err != nil {
		log.Printf("no config file found, using defaults + env vars: %v", err)
	}

	v.AutomaticEnv()

	to, err := time.ParseDuration(v.GetString("calendar_timeout"))
	if err != nil {
		log.Fatalf("bad calendar_timeout: %v", err)
	}
	cd, err := time.ParseDuration(v.GetString("cache_duration"))
	if err != nil {
		log.Fatalf("bad cache_duration: %v", err)
	}

	return &Config{
		HTTPAddr:        v.GetString("http_addr"),
		JWTSecret:       v.GetString("jwt_secret"),
		JWTUser:         v.GetString("auth_user"),
		JWTPassword:     v.GetString("auth_pass"),
		TLSCertFile:     os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:      os.Getenv("TLS_KEY_FILE"),
		CalendarBaseURL: v.GetString("calendar_base_url"),
		CalendarTimeout: to,
		CacheDuration:   cd,
		CacheBackend:    v.GetString("cache_backend"),
		DataDir:         v.GetString("data_dir"),
		RedisAddr:       v.GetString("redis_addr"),
		WindowStartDay:  v.GetInt("pricing_window_start"),
		WindowEndDay:    v.GetInt("pricing_window_end"),
		DedupeInflight:  v.GetBool("dedupe_inflight"),
		WarmupSchedule:  v.GetString("warmup_schedule"),
		CatalogFile:     v.GetString("catalog_file"),
		LogLevel:        v.GetString("log_level"),
		LogPretty:       v.GetBool("log_pretty"),
	}
}
