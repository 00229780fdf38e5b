package config

import (
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8081", cfg.Addr)
	assert.True(t, cfg.Minimum().Equal(decimal.NewFromInt(300)))
	assert.True(t, cfg.GSTPercent().Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "0 0 * * *", cfg.AccrualSchedule)

	rates, err := cfg.Rates()
	require.NoError(t, err)
	require.Len(t, rates, 3)
	assert.True(t, rates[0].Equal(decimal.RequireFromString("0.1")))
	assert.True(t, rates[1].Equal(decimal.RequireFromString("0.05")))
	assert.True(t, rates[2].Equal(decimal.RequireFromString("0.02")))
}

func TestLoad_FlagsAndEnv(t *testing.T) {
	t.Setenv("REFERRAL_RATES", "8,4")
	t.Setenv("TIMEZONE", "Asia/Kolkata")

	cfg, err := Load([]string{"-a", ":9090", "-d", "postgres://localhost/ledger"})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://localhost/ledger", cfg.DatabaseURL)

	rates, err := cfg.Rates()
	require.NoError(t, err)
	assert.Len(t, rates, 2)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			PrivateKey:           "k",
			MinimumAmount:        "300",
			WithdrawalGSTPercent: "15",
			ReferralRates:        []string{"10", "5"},
			AccrualSchedule:      "0 0 * * *",
			Timezone:             "Local",
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "zero minimum", mutate: func(c *Config) { c.MinimumAmount = "0" }},
		{name: "negative gst", mutate: func(c *Config) { c.WithdrawalGSTPercent = "-1" }},
		{name: "rate above hundred", mutate: func(c *Config) { c.ReferralRates = []string{"150"} }},
		{name: "rate not a number", mutate: func(c *Config) { c.ReferralRates = []string{"ten"} }},
		{name: "unknown timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{name: "bad schedule", mutate: func(c *Config) { c.AccrualSchedule = "every day" }},
		{name: "empty key", mutate: func(c *Config) { c.PrivateKey = " " }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
