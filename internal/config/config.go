package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "TransCrypt"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultNetwork         = NetworkTestnet
	defaultMaxAttempts     = 3
	defaultInitialDelay    = time.Second
	defaultSettleDelay     = 2 * time.Second
	defaultProvisionWindow = 90 * time.Second
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultAccessPerMinute = 5

	testnetHorizonURL   = "https://horizon-testnet.stellar.org"
	testnetFriendbotURL = "https://friendbot.stellar.org"
	publicHorizonURL    = "https://horizon.stellar.org"
)

const (
	// NetworkTestnet selects the Stellar test network, where friendbot funding is available.
	NetworkTestnet = "testnet"
	// NetworkPublic selects the production network. Accounts there cannot be faucet funded.
	NetworkPublic = "public"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName     string
	AppEnv      string
	Port        string
	LogLevel    string
	DatabaseURL string
	RedisURL    string

	Network      string
	HorizonURL   string
	FriendbotURL string

	FundingMaxAttempts  int
	FundingInitialDelay time.Duration
	FundingSettleDelay  time.Duration
	ProvisionTimeout    time.Duration

	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	AccessPerMinute int
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:             getEnv("APP_NAME", defaultAppName),
		AppEnv:              getEnv("APP_ENV", defaultAppEnv),
		Port:                getEnv("PORT", defaultPort),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		Network:             strings.ToLower(getEnv("STELLAR_NETWORK", defaultNetwork)),
		FundingMaxAttempts:  defaultMaxAttempts,
		FundingInitialDelay: defaultInitialDelay,
		FundingSettleDelay:  defaultSettleDelay,
		ProvisionTimeout:    defaultProvisionWindow,
		ShutdownPeriod:      defaultShutdownDelay,
		IdempotencyTTL:      defaultIdempotencyTTL,
		AccessPerMinute:     defaultAccessPerMinute,
	}

	switch cfg.Network {
	case NetworkTestnet:
		cfg.HorizonURL = testnetHorizonURL
		cfg.FriendbotURL = testnetFriendbotURL
	case NetworkPublic:
		cfg.HorizonURL = publicHorizonURL
	default:
		return Config{}, fmt.Errorf("invalid STELLAR_NETWORK %q: must be %q or %q", cfg.Network, NetworkTestnet, NetworkPublic)
	}

	if v := os.Getenv("HORIZON_URL"); v != "" {
		cfg.HorizonURL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("FRIENDBOT_URL"); v != "" {
		cfg.FriendbotURL = strings.TrimSuffix(v, "/")
	}

	if v := os.Getenv("FUNDING_MAX_ATTEMPTS"); v != "" {
		attempts, err := strconv.Atoi(v)
		if err != nil || attempts < 1 {
			return Config{}, fmt.Errorf("invalid FUNDING_MAX_ATTEMPTS %q", v)
		}
		cfg.FundingMaxAttempts = attempts
	}

	var err error
	if cfg.FundingInitialDelay, err = durationEnv("FUNDING_INITIAL_DELAY", cfg.FundingInitialDelay); err != nil {
		return Config{}, err
	}
	if cfg.FundingSettleDelay, err = durationEnv("FUNDING_SETTLE_DELAY", cfg.FundingSettleDelay); err != nil {
		return Config{}, err
	}
	if cfg.ProvisionTimeout, err = durationEnv("PROVISION_TIMEOUT", cfg.ProvisionTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("ACCESS_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return Config{}, fmt.Errorf("invalid ACCESS_RATE_LIMIT %q", v)
		}
		cfg.AccessPerMinute = limit
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the service runs in a development environment, where
// external backends may be replaced by in-memory fallbacks.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
