package config

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"wiivcinjector/internal/binstr"
)

const FileName = "wiivcinjector_config.json"

// Config holds the persisted settings of the injector.
type Config struct {
	ImagePath       string `json:"image_path,omitempty"`
	TemplatePath    string `json:"template_path,omitempty"` // translation template (.ini); empty means built-in English
	EnableTrCache   bool   `json:"enable_tr_cache"`
	Language        string `json:"language,omitempty"`
	MaxStringLength int    `json:"max_string_length,omitempty"` // 0 falls back to binstr.DefaultMaxLength
	// ByteOrder of pointer tables: "big" (Wii/GameCube) or "little".
	ByteOrder  string `json:"byte_order,omitempty"`
	ApiPort    string `json:"api_port,omitempty"`
	ApiEnabled bool   `json:"api_enabled"`
	DisableLog bool   `json:"disable_log"` // When true, suppress UI/API logs
}

func Default() *Config {
	return &Config{
		EnableTrCache:   true,
		Language:        "en",
		MaxStringLength: binstr.DefaultMaxLength,
		ByteOrder:       "big",
		ApiPort:         "8080",
		ApiEnabled:      false,
	}
}

// Validate checks the values a user can type into the settings dialog.
func (c *Config) Validate() error {
	if c.MaxStringLength < 0 {
		return fmt.Errorf("max string length must not be negative: %d", c.MaxStringLength)
	}
	switch strings.ToLower(strings.TrimSpace(c.ByteOrder)) {
	case "", "big", "little":
	default:
		return fmt.Errorf("unsupported byte order: %s", c.ByteOrder)
	}
	if c.ApiPort != "" {
		port, err := strconv.Atoi(c.ApiPort)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid api port: %s", c.ApiPort)
		}
	}
	return nil
}

// Order returns the pointer table byte order.
func (c *Config) Order() binary.ByteOrder {
	if strings.EqualFold(strings.TrimSpace(c.ByteOrder), "little") {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (c *Config) StringLimit() int {
	if c.MaxStringLength == 0 {
		return binstr.DefaultMaxLength
	}
	return c.MaxStringLength
}

// DefaultPath is the config file next to the executable.
func DefaultPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(exePath), FileName), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
