package config

import (
	"testing"
	"time"

	"duitku-go/internal/duitku"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DUITKU_MERCHANT_CODE", "D0001")
	t.Setenv("DUITKU_API_KEY", "secret-key")
}

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DUITKU_CALLBACK_URL", "https://shop.test/callback")
		t.Setenv("DUITKU_RETURN_URL", "https://shop.test/return")
		t.Setenv("DUITKU_ENV", "production")
		t.Setenv("DUITKU_VARIANT", "api")
		t.Setenv("DUITKU_TIMEOUT", "5s")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("APP_ENV", "test")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "D0001", cfg.MerchantCode)
		assert.Equal(t, "secret-key", cfg.APIKey)
		assert.Equal(t, duitku.Production, cfg.Environment)
		assert.Equal(t, duitku.VariantAPI, cfg.Variant)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "9090", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
	})

	t.Run("Defaults", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DUITKU_ENV", "")
		t.Setenv("DUITKU_VARIANT", "")
		t.Setenv("DUITKU_TIMEOUT", "")
		t.Setenv("DUITKU_URL_DEV", "")
		t.Setenv("APP_PORT", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, duitku.Sandbox, cfg.Environment)
		assert.Equal(t, duitku.VariantLegacy, cfg.Variant)
		assert.Equal(t, 15*time.Second, cfg.Timeout)
		assert.Equal(t, "https://sandbox.duitku.com", cfg.DevURL)
		assert.Equal(t, "8080", cfg.AppPort)
	})

	t.Run("Missing credentials", func(t *testing.T) {
		t.Setenv("DUITKU_MERCHANT_CODE", "")
		t.Setenv("DUITKU_API_KEY", "")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DUITKU_MERCHANT_CODE")
		assert.Contains(t, err.Error(), "DUITKU_API_KEY")
	})

	t.Run("Unknown variant", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DUITKU_VARIANT", "snap")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("Bad timeout", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DUITKU_VARIANT", "")
		t.Setenv("DUITKU_TIMEOUT", "soon")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "DUITKU_TIMEOUT")
	})
}

func TestConfig_Duitku(t *testing.T) {
	cfg := &Config{
		MerchantCode: "D0001",
		APIKey:       "secret-key",
		CallbackURL:  "https://shop.test/callback",
		ReturnURL:    "https://shop.test/return",
		Environment:  duitku.Production,
		Variant:      duitku.VariantLegacy,
		DevURL:       "https://dev.example",
		ProdURL:      "https://prod.example",
		Timeout:      time.Second,
	}

	dc := cfg.Duitku()
	assert.Equal(t, "D0001", dc.MerchantCode)
	assert.Equal(t, "https://prod.example", dc.BaseURLs.For(dc.Environment))
	assert.Equal(t, time.Second, dc.Timeout)

	_, err := duitku.New(dc)
	assert.NoError(t, err)
}
