package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9100"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"mysql"`
	MySQLDSN    string `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/pms?parseTime=true&charset=utf8mb4&loc=UTC&clientFoundRows=true"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	RedisPass string        `envconfig:"REDIS_PASSWORD"`
	RedisDB   int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"15m"`

	// TaxRatePercent applies to every quote, e.g. "7.5".
	TaxRatePercent decimal.Decimal `envconfig:"TAX_RATE_PERCENT" default:"0"`

	RabbitURL      string `envconfig:"RABBIT_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"pms.events"`
	OTLPEndpoint   string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// APIKey guards the API when set; the sweeper sends the same key.
	APIKey string `envconfig:"API_KEY"`

	// no-show sweeper
	APIBaseURL    string   `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
	NoShowHotels  []string `envconfig:"NOSHOW_HOTEL_IDS"`
	NoShowWorkers int      `envconfig:"NOSHOW_WORKERS" default:"4"`
	NoShowRPS     int      `envconfig:"NOSHOW_RPS" default:"5"`
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	if c.StoreDriver == StoreMemory {
		log.Warn().Msg("STORE_DRIVER=memory: reservations are not persisted")
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreMySQL, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMySQL, StoreMemory, c.StoreDriver)
	}
	if c.TaxRatePercent.IsNegative() {
		return fmt.Errorf("TAX_RATE_PERCENT must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.NoShowWorkers < 1 {
		return fmt.Errorf("NOSHOW_WORKERS must be positive")
	}
	return nil
}
