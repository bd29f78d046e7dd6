package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration required by the API process.
// All values come from env. The process must boot with an empty environment:
// missing Vapi credentials activate simulation mode and a missing DATABASE_URL
// selects the in-memory store, neither is an error.
type Config struct {
	App   AppConfig
	Store StoreConfig
	Redis RedisConfig
	Vapi  VapiConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type StoreConfig struct {
	// DatabaseURL is a Postgres DSN. Empty selects the in-memory store.
	DatabaseURL string

	// ForceMemory overrides DatabaseURL and pins the volatile store.
	ForceMemory bool
}

type RedisConfig struct {
	// Host empty disables redis entirely (no call cap).
	Host string
	Port int

	// MaxActiveCalls is the outbound concurrency cap enforced via redis.
	MaxActiveCalls int
}

type VapiConfig struct {
	APIKey      string
	AssistantID string
	BaseURL     string
}

const defaultVapiBaseURL = "https://api.vapi.ai"

func Load() (Config, error) {
	c := Config{}

	c.App.Env = optString("APP_ENV", "local")
	port, err := optInt("APP_PORT", 5000)
	if err != nil {
		return Config{}, err
	}
	c.App.Port = port

	c.Store.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	c.Store.ForceMemory, err = optBool("FORCE_MEMORY_STORE", false)
	if err != nil {
		return Config{}, err
	}

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port, err = optInt("REDIS_PORT", 6379)
	if err != nil {
		return Config{}, err
	}
	c.Redis.MaxActiveCalls, err = optInt("MAX_ACTIVE_CALLS", 5)
	if err != nil {
		return Config{}, err
	}

	c.Vapi.APIKey = strings.TrimSpace(os.Getenv("VAPI_API_KEY"))
	c.Vapi.AssistantID = strings.TrimSpace(os.Getenv("VAPI_ASSISTANT_ID"))
	c.Vapi.BaseURL = optString("VAPI_BASE_URL", defaultVapiBaseURL)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.Redis.Host != "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Redis.Host != "" && c.Redis.MaxActiveCalls <= 0 {
		errs = append(errs, fmt.Errorf("MAX_ACTIVE_CALLS must be > 0, got %d", c.Redis.MaxActiveCalls))
	}
	if c.Vapi.APIKey != "" && c.Vapi.AssistantID == "" {
		errs = append(errs, errors.New("VAPI_ASSISTANT_ID is required when VAPI_API_KEY is set"))
	}

	return joinErrors(errs)
}

// CallingServiceConfigured reports whether real outbound calls are possible.
// When false the process runs in simulation mode.
func (c Config) CallingServiceConfigured() bool {
	return c.Vapi.APIKey != "" && c.Vapi.AssistantID != ""
}

// RedisEnabled reports whether the optional call cap is active.
func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func optString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func optInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
