// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database  DatabaseConfig  `json:"database"`
	Server    ServerConfig    `json:"server"`
	Cache     CacheConfig     `json:"cache"`
	Logging   LoggingConfig   `json:"logging"`
	JWT       JWTConfig       `json:"jwt"`
	Admin     AdminConfig     `json:"admin"`
	Search    SearchConfig    `json:"search"`
	Pipeline  PipelineConfig  `json:"pipeline"`
	History   HistoryConfig   `json:"history"`
	Telegram  TelegramConfig  `json:"telegram"`
	Instagram InstagramConfig `json:"instagram"`
	Export    ExportConfig    `json:"export"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Markets   []Market        `json:"markets"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
	EnableMetrics   bool          `json:"enable_metrics"`
	AllowedOrigins  []string      `json:"allowed_origins"`
}

type CacheConfig struct {
	Enabled  bool          `json:"enabled"`
	RedisURL string        `json:"redis_url"`
	RedisDB  int           `json:"redis_db"`
	TTL      time.Duration `json:"ttl"`
}

type LoggingConfig struct {
	FilePath   string `json:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

type JWTConfig struct {
	Secret         string        `json:"secret"`
	Issuer         string        `json:"issuer"`
	Audience       string        `json:"audience"`
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
}

// AdminConfig holds the single reviewer account allowed to drive the
// review/publish API. The password is stored as a bcrypt hash.
type AdminConfig struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

type SearchConfig struct {
	RyanairBaseURL string        `json:"ryanair_base_url"`
	KiwiBaseURL    string        `json:"kiwi_base_url"`
	KiwiAPIKey     string        `json:"kiwi_api_key"`
	Currency       string        `json:"currency"`
	Timeout        time.Duration `json:"timeout"`
	// Search window: starts a random MinMonths..MaxMonths (months as 30
	// days) into the future and spans WindowSpanDays from there.
	WindowMinMonths int `json:"window_min_months"`
	WindowMaxMonths int `json:"window_max_months"`
	WindowSpanDays  int `json:"window_span_days"`
}

// ScoringWeights are the hand-tuned weights of the basic offer score. They
// encode product intent; override them via env only deliberately.
type ScoringWeights struct {
	Price       float64 `json:"price"`
	PricePerKm  float64 `json:"price_per_km"`
	Discount    float64 `json:"discount"`
	DiscountCap float64 `json:"discount_cap"`
}

// GroupWeights are the base weights of the weighted-random main-candidate
// draw, renormalized over non-empty groups at selection time.
type GroupWeights struct {
	Finde  float64 `json:"finde"`
	Chollo float64 `json:"chollo"`
	Other  float64 `json:"other"`
}

type PipelineConfig struct {
	PricePercentile   float64        `json:"price_percentile"`
	MinSamples        int            `json:"min_samples"`
	CooldownDays      int            `json:"cooldown_days"`
	RouteCooldownDays int            `json:"route_cooldown_days"`
	MinDiscountPct    float64        `json:"min_discount_pct"`
	Scoring           ScoringWeights `json:"scoring"`
	Groups            GroupWeights   `json:"groups"`
	// Deterministic reel A/B split.
	VariantRatioNew float64 `json:"variant_ratio_new"`
	VariantSalt     string  `json:"variant_salt"`
	// OriginPillRatio is the independent on/off split for the origin pill
	// overlay, separate from the reel-style variant ratio.
	OriginPillRatio float64 `json:"origin_pill_ratio"`
}

type HistoryConfig struct {
	FilePath string `json:"file_path"`
}

type TelegramConfig struct {
	Enabled  bool          `json:"enabled"`
	BaseURL  string        `json:"base_url"`
	BotToken string        `json:"bot_token"`
	ChatID   string        `json:"chat_id"`
	Timeout  time.Duration `json:"timeout"`
}

type InstagramConfig struct {
	Enabled      bool          `json:"enabled"`
	BaseURL      string        `json:"base_url"`
	AccessToken  string        `json:"access_token"`
	IGUserID     string        `json:"ig_user_id"`
	PollInterval time.Duration `json:"poll_interval"`
	PollTimeout  time.Duration `json:"poll_timeout"`
}

type ExportConfig struct {
	WebJSONDir  string `json:"web_json_dir"`
	ReportDir   string `json:"report_dir"`
	MaxEntries  int    `json:"max_entries"`
	BrandHandle string `json:"brand_handle"`
}

type SchedulerConfig struct {
	Enabled  bool          `json:"enabled"`
	Interval time.Duration `json:"interval"`
	LogDir   string        `json:"log_dir"`
}

// Market is one origin airport the pipeline runs for.
type Market struct {
	Origin     string `json:"origin"`
	Slug       string `json:"slug"`
	Label      string `json:"label"`
	OriginCity string `json:"origin_city"`
}

// DefaultMarkets lists the origin markets the daily workflow cycles through.
var DefaultMarkets = []Market{
	{Origin: "PMI", Slug: "mallorca", Label: "Mallorca", OriginCity: "Palma de Mallorca"},
	{Origin: "MAD", Slug: "madrid", Label: "Madrid", OriginCity: "Madrid"},
	{Origin: "BCN", Slug: "barcelona", Label: "Barcelona", OriginCity: "Barcelona"},
}

// LoadProductionConfig loads configuration from environment variables,
// with an optional .env file providing defaults.
func LoadProductionConfig() (*ProductionConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "escapadas"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024),
			EnableMetrics:   getEnvBool("SERVER_ENABLE_METRICS", true),
			AllowedOrigins:  getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://escapadasgo.com"}),
		},
		Cache: CacheConfig{
			Enabled:  getEnvBool("CACHE_ENABLED", false),
			RedisURL: getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:  getEnvInt("CACHE_REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 6*time.Hour),
		},
		Logging: LoggingConfig{
			FilePath:   getEnvString("LOG_FILE_PATH", "data/escapadas.log"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		JWT: JWTConfig{
			Secret:         getEnvString("JWT_SECRET", ""),
			Issuer:         getEnvString("JWT_ISSUER", "escapadas-go"),
			Audience:       getEnvString("JWT_AUDIENCE", "escapadas-go-review"),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", 12*time.Hour),
		},
		Admin: AdminConfig{
			Username:     getEnvString("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnvString("ADMIN_PASSWORD_HASH", ""),
		},
		Search: SearchConfig{
			RyanairBaseURL:  getEnvString("SEARCH_RYANAIR_BASE_URL", "https://services-api.ryanair.com"),
			KiwiBaseURL:     getEnvString("SEARCH_KIWI_BASE_URL", "https://api.tequila.kiwi.com"),
			KiwiAPIKey:      getEnvString("SEARCH_KIWI_API_KEY", ""),
			Currency:        getEnvString("SEARCH_CURRENCY", "EUR"),
			Timeout:         getEnvDuration("SEARCH_TIMEOUT", 15*time.Second),
			WindowMinMonths: getEnvInt("SEARCH_WINDOW_MIN_MONTHS", 2),
			WindowMaxMonths: getEnvInt("SEARCH_WINDOW_MAX_MONTHS", 6),
			WindowSpanDays:  getEnvInt("SEARCH_WINDOW_SPAN_DAYS", 15),
		},
		Pipeline: PipelineConfig{
			PricePercentile:   getEnvFloat("PIPELINE_PRICE_PERCENTILE", 0.70),
			MinSamples:        getEnvInt("PIPELINE_MIN_SAMPLES", 5),
			CooldownDays:      getEnvInt("PIPELINE_COOLDOWN_DAYS", 14),
			RouteCooldownDays: getEnvInt("PIPELINE_ROUTE_COOLDOWN_DAYS", 5),
			MinDiscountPct:    getEnvFloat("PIPELINE_MIN_DISCOUNT_PCT", 40.0),
			Scoring: ScoringWeights{
				Price:       getEnvFloat("PIPELINE_SCORE_WEIGHT_PRICE", 0.45),
				PricePerKm:  getEnvFloat("PIPELINE_SCORE_WEIGHT_PPKM", 0.25),
				Discount:    getEnvFloat("PIPELINE_SCORE_WEIGHT_DISCOUNT", 0.30),
				DiscountCap: getEnvFloat("PIPELINE_SCORE_DISCOUNT_CAP", 90.0),
			},
			Groups: GroupWeights{
				Finde:  getEnvFloat("PIPELINE_GROUP_WEIGHT_FINDE", 0.40),
				Chollo: getEnvFloat("PIPELINE_GROUP_WEIGHT_CHOLLO", 0.20),
				Other:  getEnvFloat("PIPELINE_GROUP_WEIGHT_OTHER", 0.40),
			},
			VariantRatioNew: getEnvFloat("PIPELINE_VARIANT_RATIO_NEW", 0.5),
			VariantSalt:     getEnvString("PIPELINE_VARIANT_SALT", "escapadasgo-v1"),
			OriginPillRatio: getEnvFloat("PIPELINE_ORIGIN_PILL_RATIO", 0.5),
		},
		History: HistoryConfig{
			FilePath: getEnvString("HISTORY_FILE_PATH", "data/published_deals.json"),
		},
		Telegram: TelegramConfig{
			Enabled:  getEnvBool("TELEGRAM_ENABLED", false),
			BaseURL:  getEnvString("TELEGRAM_BASE_URL", "https://api.telegram.org"),
			BotToken: getEnvString("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnvString("TELEGRAM_CHAT_ID", ""),
			Timeout:  getEnvDuration("TELEGRAM_TIMEOUT", 30*time.Second),
		},
		Instagram: InstagramConfig{
			Enabled:      getEnvBool("INSTAGRAM_ENABLED", false),
			BaseURL:      getEnvString("INSTAGRAM_BASE_URL", "https://graph.facebook.com/v19.0"),
			AccessToken:  getEnvString("INSTAGRAM_ACCESS_TOKEN", ""),
			IGUserID:     getEnvString("INSTAGRAM_IG_USER_ID", ""),
			PollInterval: getEnvDuration("INSTAGRAM_POLL_INTERVAL", 5*time.Second),
			PollTimeout:  getEnvDuration("INSTAGRAM_POLL_TIMEOUT", 3*time.Minute),
		},
		Export: ExportConfig{
			WebJSONDir:  getEnvString("EXPORT_WEB_JSON_DIR", "data/web"),
			ReportDir:   getEnvString("EXPORT_REPORT_DIR", "data/reports"),
			MaxEntries:  getEnvInt("EXPORT_MAX_ENTRIES", 5),
			BrandHandle: getEnvString("EXPORT_BRAND_HANDLE", "@escapadasgo_mallorca"),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvBool("SCHEDULER_ENABLED", true),
			Interval: getEnvDuration("SCHEDULER_INTERVAL", 24*time.Hour),
			LogDir:   getEnvString("SCHEDULER_LOG_DIR", "data"),
		},
		Markets: DefaultMarkets,
	}

	if origins := getEnvStringSlice("MARKET_ORIGINS", nil); len(origins) > 0 {
		cfg.Markets = filterMarkets(DefaultMarkets, origins)
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func filterMarkets(markets []Market, origins []string) []Market {
	var out []Market
	for _, m := range markets {
		for _, o := range origins {
			if strings.EqualFold(m.Origin, o) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errs []string

	if cfg.Database.Host == "" {
		errs = append(errs, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errs = append(errs, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errs = append(errs, "DB_NAME is required")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}
	if cfg.Pipeline.PricePercentile < 0 || cfg.Pipeline.PricePercentile > 1 {
		errs = append(errs, "PIPELINE_PRICE_PERCENTILE must be in [0,1]")
	}
	if cfg.Pipeline.MinDiscountPct < 0 || cfg.Pipeline.MinDiscountPct > 100 {
		errs = append(errs, "PIPELINE_MIN_DISCOUNT_PCT must be in [0,100]")
	}
	if cfg.Pipeline.VariantRatioNew < 0 || cfg.Pipeline.VariantRatioNew > 1 {
		errs = append(errs, "PIPELINE_VARIANT_RATIO_NEW must be in [0,1]")
	}
	if cfg.Pipeline.OriginPillRatio < 0 || cfg.Pipeline.OriginPillRatio > 1 {
		errs = append(errs, "PIPELINE_ORIGIN_PILL_RATIO must be in [0,1]")
	}
	if w := cfg.Pipeline.Groups; w.Finde <= 0 && w.Chollo <= 0 && w.Other <= 0 {
		errs = append(errs, "at least one PIPELINE_GROUP_WEIGHT must be positive")
	}
	if cfg.History.FilePath == "" {
		errs = append(errs, "HISTORY_FILE_PATH is required")
	}
	if len(cfg.Markets) == 0 {
		errs = append(errs, "MARKET_ORIGINS matched no known market")
	}
	if cfg.Search.WindowMinMonths <= 0 || cfg.Search.WindowMaxMonths < cfg.Search.WindowMinMonths {
		errs = append(errs, "SEARCH_WINDOW months range is invalid")
	}
	if cfg.Search.WindowSpanDays <= 0 {
		errs = append(errs, "SEARCH_WINDOW_SPAN_DAYS must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() error {
	envFile := ".env"

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])
				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
