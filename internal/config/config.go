package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Provide),
)

type Config struct {
	AppEnv   string
	LogLevel string

	DB        DBConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
	Scheduler SchedulerConfig
	Gateways  GatewayConfig
	HTTP      HTTPConfig
	Otel      OtelConfig
}

type DBConfig struct {
	Driver      string
	DSN         string
	TablePrefix string
}

// StorageConfig selects which physical order storage the store currently uses.
// CustomOrdersTable true means orders live in the dedicated order tables.
type StorageConfig struct {
	CustomOrdersTable bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TelemetryConfig struct {
	CacheKey       string
	CacheTTL       time.Duration
	InitialDelay   time.Duration
	Interval       time.Duration
	TrailingMonths int
}

type SchedulerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

type GatewayConfig struct {
	// Enabled lists the ids of the payment gateways currently registered in the store.
	Enabled []string
}

type HTTPConfig struct {
	Addr string
}

type OtelConfig struct {
	Endpoint string
	// Protocol is the OTLP transport: grpc or http.
	Protocol    string
	ServiceName string
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.LogLevel == "debug"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("log.level", "info")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table_prefix", "wp_")

	v.SetDefault("storage.custom_orders_table", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("telemetry.cache_key", "wcs_telemetry_data")
	v.SetDefault("telemetry.cache_ttl", 7*24*time.Hour)
	v.SetDefault("telemetry.initial_delay", 10*time.Minute)
	v.SetDefault("telemetry.interval", 24*time.Hour)
	v.SetDefault("telemetry.trailing_months", 12)

	v.SetDefault("scheduler.poll_interval", 30*time.Second)
	v.SetDefault("scheduler.batch_size", 25)

	v.SetDefault("gateways.enabled", "stripe,paypal")

	v.SetDefault("http.addr", ":8080")

	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.protocol", "grpc")
	v.SetDefault("otel.service_name", "subtelemetry")
}

// Load reads configuration from an optional subtelemetry.{yaml,json,toml} file,
// a .env file and the process environment, in increasing order of precedence.
func Load() (Config, error) {
	cfg, _, err := Provide()
	return cfg, err
}

// Provide loads the configuration together with a watcher over the config
// file it came from.
func Provide() (Config, *Watcher, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("subtelemetry")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/subtelemetry")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, nil, err
		}
	}
	return finish(v)
}

// LoadFile reads configuration from the given file and the environment.
func LoadFile(path string) (Config, *Watcher, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, nil, err
	}
	return finish(v)
}

func finish(v *viper.Viper) (Config, *Watcher, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := fromViper(v)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, &Watcher{v: v}, nil
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppEnv:   strings.TrimSpace(v.GetString("app.env")),
		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		DB: DBConfig{
			Driver:      strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
			DSN:         strings.TrimSpace(v.GetString("db.dsn")),
			TablePrefix: strings.TrimSpace(v.GetString("db.table_prefix")),
		},
		Storage: StorageConfig{
			CustomOrdersTable: v.GetBool("storage.custom_orders_table"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("redis.addr")),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Telemetry: TelemetryConfig{
			CacheKey:       strings.TrimSpace(v.GetString("telemetry.cache_key")),
			CacheTTL:       v.GetDuration("telemetry.cache_ttl"),
			InitialDelay:   v.GetDuration("telemetry.initial_delay"),
			Interval:       v.GetDuration("telemetry.interval"),
			TrailingMonths: v.GetInt("telemetry.trailing_months"),
		},
		Scheduler: SchedulerConfig{
			PollInterval: v.GetDuration("scheduler.poll_interval"),
			BatchSize:    v.GetInt("scheduler.batch_size"),
		},
		Gateways: GatewayConfig{
			Enabled: splitList(v.Get("gateways.enabled")),
		},
		HTTP: HTTPConfig{
			Addr: strings.TrimSpace(v.GetString("http.addr")),
		},
		Otel: OtelConfig{
			Endpoint:    strings.TrimSpace(v.GetString("otel.endpoint")),
			Protocol:    strings.ToLower(strings.TrimSpace(v.GetString("otel.protocol"))),
			ServiceName: strings.TrimSpace(v.GetString("otel.service_name")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var (
	ErrInvalidDriver         = errors.New("invalid_db_driver")
	ErrInvalidCacheKey       = errors.New("invalid_cache_key")
	ErrInvalidCacheTTL       = errors.New("invalid_cache_ttl")
	ErrInvalidInterval       = errors.New("invalid_schedule_interval")
	ErrInvalidTrailingMonths = errors.New("invalid_trailing_months")
	ErrInvalidOtelProtocol   = errors.New("invalid_otel_protocol")
)

func (c Config) Validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return ErrInvalidDriver
	}
	if c.Telemetry.CacheKey == "" {
		return ErrInvalidCacheKey
	}
	if c.Telemetry.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}
	if c.Telemetry.Interval <= 0 || c.Telemetry.InitialDelay < 0 {
		return ErrInvalidInterval
	}
	if c.Telemetry.TrailingMonths <= 0 {
		return ErrInvalidTrailingMonths
	}
	switch c.Otel.Protocol {
	case "", "grpc", "http":
	default:
		return ErrInvalidOtelProtocol
	}
	return nil
}

// splitList accepts either a config-file list or a comma separated env value.
func splitList(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
