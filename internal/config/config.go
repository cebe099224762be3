package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"duitku-go/internal/duitku"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	MerchantCode string
	APIKey       string
	CallbackURL  string
	ReturnURL    string
	Environment  duitku.Environment
	Variant      duitku.Variant
	DevURL       string
	ProdURL      string
	Timeout      time.Duration

	// CallbackRateLimit is requests per second allowed on the callback route.
	CallbackRateLimit float64
	CallbackBurst     int
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	env, err := duitku.ParseEnvironment(os.Getenv("DUITKU_ENV"))
	if err != nil {
		return nil, err
	}
	variant, err := duitku.ParseVariant(os.Getenv("DUITKU_VARIANT"))
	if err != nil {
		return nil, err
	}

	timeout := 15 * time.Second
	if raw := os.Getenv("DUITKU_TIMEOUT"); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("DUITKU_TIMEOUT: %w", err)
		}
	}

	cfg := &Config{
		AppPort:      getEnv("APP_PORT", "8080"),
		AppEnv:       os.Getenv("APP_ENV"),
		MerchantCode: os.Getenv("DUITKU_MERCHANT_CODE"),
		APIKey:       os.Getenv("DUITKU_API_KEY"),
		CallbackURL:  os.Getenv("DUITKU_CALLBACK_URL"),
		ReturnURL:    os.Getenv("DUITKU_RETURN_URL"),
		Environment:  env,
		Variant:      variant,
		DevURL:       getEnv("DUITKU_URL_DEV", "https://sandbox.duitku.com"),
		ProdURL:      getEnv("DUITKU_URL_PROD", "https://passport.duitku.com"),
		Timeout:      timeout,

		CallbackRateLimit: 2,
		CallbackBurst:     5,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.MerchantCode == "" {
		errs = append(errs, "DUITKU_MERCHANT_CODE is required")
	}
	if c.APIKey == "" {
		errs = append(errs, "DUITKU_API_KEY is required")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "DUITKU_TIMEOUT must be positive")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Duitku maps the loaded settings onto the client configuration.
func (c *Config) Duitku() duitku.Config {
	return duitku.Config{
		MerchantCode: c.MerchantCode,
		APIKey:       c.APIKey,
		CallbackURL:  c.CallbackURL,
		ReturnURL:    c.ReturnURL,
		Environment:  c.Environment,
		Variant:      c.Variant,
		BaseURLs: duitku.BaseURLs{
			Sandbox:    c.DevURL,
			Production: c.ProdURL,
		},
		Timeout: c.Timeout,
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
