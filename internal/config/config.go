package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	DBDriver          string        `env:"DB_DRIVER,default=postgres"`
	DBHost            string        `env:"DB_HOST,default=localhost"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,default=dealwatch"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME,default=dealwatch"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBSQLitePath      string        `env:"DB_SQLITE_PATH,default=dealwatch.db"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	ResendAPIKey  string        `env:"RESEND_API_KEY"`
	ResendBaseURL string        `env:"RESEND_BASE_URL,default=https://api.resend.com"`
	SenderEmail   string        `env:"SENDER_EMAIL,default=deals@dealwatch.local"`
	EmailTimeout  time.Duration `env:"EMAIL_TIMEOUT,default=10s"`

	SteamStoreBaseURL string        `env:"STEAM_STORE_BASE_URL,default=https://store.steampowered.com/api"`
	SteamCountryCode  string        `env:"STEAM_COUNTRY_CODE,default=IN"`
	SteamTimeout      time.Duration `env:"STEAM_TIMEOUT,default=8s"`

	EpicFreeGamesURLs []string      `env:"EPIC_FREE_GAMES_URLS,delimiter=|"`
	EpicTimeout       time.Duration `env:"EPIC_TIMEOUT,default=10s"`

	PriceCheckIntervalHours   int    `env:"PRICE_CHECK_INTERVAL_HOURS,default=12"`
	FreeGamesIntervalHours    int    `env:"FREE_GAMES_CHECK_INTERVAL_HOURS,default=6"`
	DealsRefreshIntervalHours int    `env:"DEALS_REFRESH_INTERVAL_HOURS,default=6"`
	DigestTime                string `env:"DIGEST_TIME,default=22:30"`

	MinDiscountPercent int           `env:"MIN_DISCOUNT_PERCENT,default=10"`
	DealsTargetSize    int           `env:"DEALS_TARGET_SIZE,default=10"`
	CacheStaleCeiling  time.Duration `env:"CACHE_STALE_CEILING,default=6h"`
	DealsCacheFile     string        `env:"DEALS_CACHE_FILE,default=deals_cache.json"`
	SweepDelay         time.Duration `env:"SWEEP_DELAY,default=1s"`

	CorrectionsFile string `env:"CORRECTIONS_FILE"`
	WatchlistFile   string `env:"WATCHLIST_FILE"`

	HTTPAddr            string        `env:"HTTP_ADDR,default=:8080"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.DigestCronSpec(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DigestCronSpec converts the HH:MM digest time into a daily cron expression.
func (c Config) DigestCronSpec() (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(c.DigestTime), ":")
	if !ok {
		return "", fmt.Errorf("invalid digest time %q, want HH:MM", c.DigestTime)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid digest hour %q", hh)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid digest minute %q", mm)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
