package config_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wiivcinjector/internal/binstr"
	"wiivcinjector/internal/config"
)

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	cfg.ImagePath = "game.iso"
	cfg.ByteOrder = "little"
	cfg.ApiEnabled = true
	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
	require.Equal(t, binary.LittleEndian, loaded.Order())

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	loaded, err = config.Load(path)
	require.Error(t, err)
	require.Equal(t, config.Default(), loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *config.Config)
		ok   bool
	}{
		{"default", func(c *config.Config) {}, true},
		{"little", func(c *config.Config) { c.ByteOrder = "Little" }, true},
		{"bad order", func(c *config.Config) { c.ByteOrder = "middle" }, false},
		{"bad port", func(c *config.Config) { c.ApiPort = "http" }, false},
		{"port range", func(c *config.Config) { c.ApiPort = "70000" }, false},
		{"no port", func(c *config.Config) { c.ApiPort = "" }, true},
		{"negative length", func(c *config.Config) { c.MaxStringLength = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			tt.edit(c)
			if tt.ok {
				require.NoError(t, c.Validate())
			} else {
				require.Error(t, c.Validate())
			}
		})
	}
}

func TestStringLimit(t *testing.T) {
	c := config.Default()
	c.MaxStringLength = 0
	require.Equal(t, binstr.DefaultMaxLength, c.StringLimit())
	c.MaxStringLength = 128
	require.Equal(t, 128, c.StringLimit())
	require.Equal(t, binary.BigEndian, config.Default().Order())
}
