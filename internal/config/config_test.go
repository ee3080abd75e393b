package config_test

import (
	"testing"

	"casino_ledger/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should parse the starting balance", func(t *testing.T) {
		t.Setenv("STARTING_BALANCE", "2500.50")

		cfg := config.LoadConfig()
		assert.True(t, cfg.StartingBalance.Equal(decimal.RequireFromString("2500.50")))
	})

	t.Run("should default the starting balance to 1000 when unset or malformed", func(t *testing.T) {
		t.Setenv("STARTING_BALANCE", "")
		cfg := config.LoadConfig()
		assert.True(t, cfg.StartingBalance.Equal(decimal.NewFromInt(1000)))

		t.Setenv("STARTING_BALANCE", "not-a-number")
		cfg = config.LoadConfig()
		assert.True(t, cfg.StartingBalance.Equal(decimal.NewFromInt(1000)))

		t.Setenv("STARTING_BALANCE", "-5")
		cfg = config.LoadConfig()
		assert.True(t, cfg.StartingBalance.Equal(decimal.NewFromInt(1000)))
	})
}
