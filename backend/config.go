package main

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr             string       `json:"addr" yaml:"addr"`
	LogLevel         string       `json:"log_level" yaml:"log_level"`
	BoardSize        int          `json:"board_size" yaml:"board_size"`
	WinLength        int          `json:"win_length" yaml:"win_length"`
	CaptureWinStones int          `json:"capture_win_stones" yaml:"capture_win_stones"`
	Engine           EngineConfig `json:"engine" yaml:"engine"`
	AdvisorModel     string       `json:"advisor_model" yaml:"advisor_model"`
	AdvisorKeyEnv    string       `json:"advisor_key_env" yaml:"advisor_key_env"`
	LeaderboardPath  string       `json:"leaderboard_path" yaml:"leaderboard_path"`
}

func DefaultConfig() Config {
	return Config{
		Addr:             ":8080",
		LogLevel:         "info",
		BoardSize:        19,
		WinLength:        5,
		CaptureWinStones: 10,
		Engine:           DefaultEngineConfig(),
		AdvisorModel:     "gemini-2.0-flash",
		AdvisorKeyEnv:    "GEMINI_API_KEY",
		LeaderboardPath:  "leaderboard.json",
	}
}

// LoadConfig overlays a YAML file onto the defaults. A missing path is
// not an error; a malformed file is.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

func (c Config) GameSettings() GameSettings {
	settings := DefaultGameSettings()
	if c.BoardSize > 0 {
		settings.BoardSize = c.BoardSize
	}
	if c.WinLength > 0 {
		settings.WinLength = c.WinLength
	}
	if c.CaptureWinStones > 0 {
		settings.CaptureWinStones = c.CaptureWinStones
	}
	return settings
}
