package config

import (
	"errors"
	"flag"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

type Config struct {
	Addr             string   `env:"RUN_ADDRESS" env-default:"localhost:8081"`
	DatabaseURL      string   `env:"DATABASE_URI"`
	PrivateKey       string   `env:"PRIVATE_KEY" env-default:"privatekey"`
	AuthDisabledURLs []string `env:"AUTH_DISABLED_URLS" env-default:"/login,/register,/settings" env-separator:","`
	LogLevel         string   `env:"LOG_LEVEL" env-default:"info"`
	AdminLogins      []string `env:"ADMIN_LOGINS" env-separator:","`

	MinimumAmount        string   `env:"MINIMUM_AMOUNT" env-default:"300"`
	WithdrawalGSTPercent string   `env:"WITHDRAWAL_GST_PERCENT" env-default:"15"`
	ReferralRates        []string `env:"REFERRAL_RATES" env-default:"10,5,2" env-separator:","`
	AccrualSchedule      string   `env:"ACCRUAL_SCHEDULE" env-default:"0 0 * * *"`
	Timezone             string   `env:"TIMEZONE" env-default:"Local"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	GraphURI      string `env:"GRAPH_URI"`
	GraphUsername string `env:"GRAPH_USERNAME"`
	GraphPassword string `env:"GRAPH_PASSWORD"`
	GraphDatabase string `env:"GRAPH_DATABASE"`

	PaymentUPIID   string   `env:"PAYMENT_UPI_ID"`
	PaymentQRURL   string   `env:"PAYMENT_QR_URL"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-default:"*" env-separator:","`
}

// Load reads flags from args first and lets environment variables override them.
func Load(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("tradeindia", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "a", "localhost:8081", "HTTP server address")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "database URI, in-memory store when empty")
	fs.StringVar(&cfg.RedisAddr, "redis", "", "redis address for events and run locks")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("couldn't parse flags: %w", err)
	}

	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	minimum, err := decimal.NewFromString(c.MinimumAmount)
	if err != nil || !minimum.IsPositive() {
		errs = append(errs, fmt.Errorf("MINIMUM_AMOUNT must be a positive number, got %q", c.MinimumAmount))
	}

	gst, err := decimal.NewFromString(c.WithdrawalGSTPercent)
	if err != nil || gst.IsNegative() {
		errs = append(errs, fmt.Errorf("WITHDRAWAL_GST_PERCENT must be a non-negative number, got %q", c.WithdrawalGSTPercent))
	}

	if _, err = c.Rates(); err != nil {
		errs = append(errs, err)
	}

	if _, err = c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("unknown TIMEZONE %q: %w", c.Timezone, err))
	}

	if _, err = cron.ParseStandard(c.AccrualSchedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid ACCRUAL_SCHEDULE %q: %w", c.AccrualSchedule, err))
	}

	if strings.TrimSpace(c.PrivateKey) == "" {
		errs = append(errs, errors.New("PRIVATE_KEY is required"))
	}

	return errors.Join(errs...)
}

func (c *Config) Minimum() decimal.Decimal {
	return decimal.RequireFromString(c.MinimumAmount)
}

func (c *Config) GSTPercent() decimal.Decimal {
	return decimal.RequireFromString(c.WithdrawalGSTPercent)
}

// Rates converts the configured percent list into fractions, level 1 first.
func (c *Config) Rates() ([]decimal.Decimal, error) {
	rates := make([]decimal.Decimal, 0, len(c.ReferralRates))
	hundred := decimal.NewFromInt(100)

	for i, raw := range c.ReferralRates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			if len(c.ReferralRates) == 1 {
				break
			}
			return nil, fmt.Errorf("REFERRAL_RATES level %d is empty", i+1)
		}
		pct, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("REFERRAL_RATES level %d: %w", i+1, err)
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return nil, fmt.Errorf("REFERRAL_RATES level %d must be between 0 and 100, got %s", i+1, raw)
		}
		rates = append(rates, pct.Div(hundred))
	}

	return rates, nil
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
