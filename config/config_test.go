package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "SERVER_PORT", "PUBLIC_URL", "SESSION_SECRET", "PAYMENT_PROVIDER",
		"CHARGE_AMOUNT", "CHARGE_DESCRIPTION", "FOR4PAYMENTS_REFERER", "DB_HOST", "DB_NAME", "REDIS_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "cashtime", cfg.Payment.Provider)
	assert.Equal(t, "45.84", cfg.Payment.ChargeAmount.StringFixed(2))
	assert.Equal(t, "Regularização de Débitos - Receita Federal", cfg.Payment.ChargeDescription)
	assert.Equal(t, "http://localhost:5000/pagamento", cfg.Payment.For4Payments.Referer)
	assert.True(t, cfg.Session.Insecure)
	assert.NotEmpty(t, cfg.Session.Secret)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PUBLIC_URL", "https://checkout.example.com/")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_MAX_AGE", "600")
	t.Setenv("PAYMENT_PROVIDER", "For4Payments")
	t.Setenv("CHARGE_AMOUNT", "99.90")
	t.Setenv("FOR4PAYMENTS_REFERER", "")
	t.Setenv("DB_HOST", "localhost:3306")
	t.Setenv("DB_NAME", "pix")

	cfg := Load()

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "for4payments", cfg.Payment.Provider)
	assert.Equal(t, "99.90", cfg.Payment.ChargeAmount.StringFixed(2))
	assert.Equal(t, "https://checkout.example.com/pagamento", cfg.Payment.For4Payments.Referer)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.False(t, cfg.Session.Insecure)
	assert.Equal(t, 600, cfg.Session.MaxAge)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoadInvalidAmountFallsBack(t *testing.T) {
	t.Setenv("CHARGE_AMOUNT", "abc")
	assert.Equal(t, "45.84", Load().Payment.ChargeAmount.StringFixed(2))
}

func TestLogSummaryReportsProblems(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CHARGE_AMOUNT", "abc")

	core, logs := observer.New(zapcore.DebugLevel)
	Load().LogSummary(zap.New(core))

	assert.Equal(t, 1, logs.FilterMessageSnippet("invalid CHARGE_AMOUNT").Len())
	insecure := logs.FilterMessageSnippet("SESSION_SECRET").All()
	require.Len(t, insecure, 1)
	assert.Equal(t, zapcore.ErrorLevel, insecure[0].Level)
	assert.Equal(t, 1, logs.FilterMessage("configuration loaded").Len())
}

func TestLogSummaryDevelopmentSecret(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CHARGE_AMOUNT", "")

	core, logs := observer.New(zapcore.DebugLevel)
	Load().LogSummary(zap.New(core))

	insecure := logs.FilterMessageSnippet("SESSION_SECRET").All()
	require.Len(t, insecure, 1)
	assert.Equal(t, zapcore.WarnLevel, insecure[0].Level)
	assert.Zero(t, logs.FilterMessageSnippet("CHARGE_AMOUNT").Len())
}
