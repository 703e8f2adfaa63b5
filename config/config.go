package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pix-checkout-api/database"
)

const (
	devSessionSecret     = "dev-secret-key-change-in-production"
	defaultChargeAmount  = "45.84"
	defaultChargeDesc    = "Regularização de Débitos - Receita Federal"
	defaultPort          = "5000"
	defaultPublicURL     = "http://localhost:5000"
	defaultLeadsAPIURL   = "https://api-lista-leads.replit.app/api"
	defaultCPFAPIURL     = "https://consulta.fontesderenda.blog"
	defaultSessionMaxAge = 86400
)

type Config struct {
	Env      string
	Server   ServerConfig
	Session  SessionConfig
	Payment  PaymentConfig
	Lookup   LookupConfig
	Notify   NotifyConfig
	Database database.DatabaseConfig
	Redis    RedisConfig

	warnings []string
}

type ServerConfig struct {
	Port      string
	PublicURL string
}

type SessionConfig struct {
	Secret   string
	Domain   string
	MaxAge   int
	Secure   bool
	Insecure bool // true when the development fallback secret is in use
}

type PaymentConfig struct {
	Provider          string
	ChargeAmount      decimal.Decimal
	ChargeDescription string
	Cashtime          CashtimeConfig
	For4Payments      For4PaymentsConfig
}

type CashtimeConfig struct {
	SecretKey   string
	PublicKey   string
	BaseURL     string
	PostbackURL string
}

type For4PaymentsConfig struct {
	SecretKey string
	BaseURL   string
	Referer   string
}

type LookupConfig struct {
	LeadsURL string
	CPFURL   string
	CPFToken string
}

type NotifyConfig struct {
	PushcutURL string
}

type RedisConfig struct {
	URL string
}

// Load reads .env (when present) and the process environment. It never
// fails: problems are kept for LogSummary and missing gateway keys are
// reported when the payment service is built.
func Load() *Config {
	envErr := godotenv.Load()

	cfg := &Config{
		Env: getenv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:      getenv("SERVER_PORT", defaultPort),
			PublicURL: strings.TrimRight(getenv("PUBLIC_URL", defaultPublicURL), "/"),
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			Domain: os.Getenv("SESSION_DOMAIN"),
			MaxAge: getenvInt("SESSION_MAX_AGE", defaultSessionMaxAge),
			Secure: getenvBool("SESSION_SECURE", false),
		},
		Payment: PaymentConfig{
			Provider:          strings.ToLower(getenv("PAYMENT_PROVIDER", "cashtime")),
			ChargeDescription: getenv("CHARGE_DESCRIPTION", defaultChargeDesc),
			Cashtime: CashtimeConfig{
				SecretKey:   os.Getenv("CASHTIME_SECRET_KEY"),
				PublicKey:   os.Getenv("CASHTIME_PUBLIC_KEY"),
				BaseURL:     os.Getenv("CASHTIME_API_URL"),
				PostbackURL: os.Getenv("CASHTIME_POSTBACK_URL"),
			},
			For4Payments: For4PaymentsConfig{
				SecretKey: os.Getenv("FOR4PAYMENTS_SECRET_KEY"),
				BaseURL:   os.Getenv("FOR4PAYMENTS_API_URL"),
				Referer:   os.Getenv("FOR4PAYMENTS_REFERER"),
			},
		},
		Lookup: LookupConfig{
			LeadsURL: getenv("LEADS_API_URL", defaultLeadsAPIURL),
			CPFURL:   getenv("CPF_API_URL", defaultCPFAPIURL),
			CPFToken: os.Getenv("CPF_API_TOKEN"),
		},
		Notify: NotifyConfig{
			PushcutURL: os.Getenv("PUSHCUT_WEBHOOK_URL"),
		},
		Database: database.DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
	}

	if envErr != nil {
		cfg.warnings = append(cfg.warnings, "could not load .env file: "+envErr.Error())
	}

	amount, err := decimal.NewFromString(getenv("CHARGE_AMOUNT", defaultChargeAmount))
	if err != nil {
		cfg.warnings = append(cfg.warnings, "invalid CHARGE_AMOUNT, using default "+defaultChargeAmount)
		amount = decimal.RequireFromString(defaultChargeAmount)
	}
	cfg.Payment.ChargeAmount = amount

	if cfg.Payment.For4Payments.Referer == "" {
		cfg.Payment.For4Payments.Referer = cfg.Server.PublicURL + "/pagamento"
	}

	if cfg.Session.Secret == "" {
		cfg.Session.Secret = devSessionSecret
		cfg.Session.Insecure = true
	}

	return cfg
}

// LogSummary reports what Load found. The logger is usually built from the
// loaded config, so nothing can be logged while loading.
func (c *Config) LogSummary(logger *zap.Logger) {
	for _, w := range c.warnings {
		logger.Warn(w)
	}
	if c.Session.Insecure {
		if c.IsDevelopment() {
			logger.Warn("SESSION_SECRET not set, using development key")
		} else {
			logger.Error("SESSION_SECRET not set in production, sessions are signed with the development key")
		}
	}

	logger.Info("configuration loaded",
		zap.String("env", c.Env),
		zap.String("port", c.Server.Port),
		zap.String("payment_provider", c.Payment.Provider),
		zap.Bool("database", c.Database.Enabled()),
		zap.Bool("redis", c.Redis.URL != ""),
		zap.Bool("pushcut", c.Notify.PushcutURL != ""),
	)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
