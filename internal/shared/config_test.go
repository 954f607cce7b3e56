package shared

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, StoreMySQL, c.StoreDriver)
	assert.Equal(t, 15*time.Minute, c.CacheTTL)
	assert.True(t, c.TaxRatePercent.IsZero())
	assert.Equal(t, "pms.events", c.EventsExchange)
	assert.Equal(t, 4, c.NoShowWorkers)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.APIKey)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("TAX_RATE_PERCENT", "7.5")
	t.Setenv("NOSHOW_HOTEL_IDS", "h1,h2")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, c.StoreDriver)
	assert.Equal(t, 30*time.Second, c.CacheTTL)
	assert.True(t, c.TaxRatePercent.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, []string{"h1", "h2"}, c.NoShowHotels)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")

	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("TAX_RATE_PERCENT", "-1")
	_, err = Load()
	assert.ErrorContains(t, err, "TAX_RATE_PERCENT")

	t.Setenv("TAX_RATE_PERCENT", "0")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load()
	assert.ErrorContains(t, err, "LOG_LEVEL")
}
