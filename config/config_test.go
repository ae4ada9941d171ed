package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3, cfg.Booking.SlotCapacity)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "12:00", "13:00"}, cfg.Booking.Slots)
	assert.Len(t, cfg.Catalog.Services, 4)

	svc, ok := cfg.Catalog.Service("passport")
	require.True(t, ok)
	assert.Equal(t, "Passport Renewal", svc.TitleEn)

	_, ok = cfg.Catalog.Service("driving-license")
	assert.False(t, ok)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("http:\n  address: \":9090\"\nbooking:\n  slot_capacity: 5\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, 5, cfg.Booking.SlotCapacity)
	// Untouched sections keep their defaults.
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Len(t, cfg.Catalog.Services, 4)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
