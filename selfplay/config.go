package selfplay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brensch/diamonds/game"
)

// Config describes a local match. Fields missing from a YAML file keep their
// DefaultConfig value.
type Config struct {
	Width           int  `yaml:"width"`
	Height          int  `yaml:"height"`
	Bots            int  `yaml:"bots"`
	Ticks           int  `yaml:"ticks"`
	Teleporters     bool `yaml:"teleporters"`
	BonusSwitch     bool `yaml:"bonus_switch"`
	MinimumDiamonds int  `yaml:"minimum_diamonds"`
	RedChance       int  `yaml:"red_chance"`
	// Seed fixes the match randomness. Zero picks a seed from the clock.
	Seed int64 `yaml:"seed"`
}

// MaxBots is the number of corner bases available.
const MaxBots = 4

func DefaultConfig() Config {
	return Config{
		Width:           15,
		Height:          15,
		Bots:            2,
		Ticks:           100,
		Teleporters:     true,
		BonusSwitch:     true,
		MinimumDiamonds: game.DefaultSpawnSettings.MinimumDiamonds,
		RedChance:       game.DefaultSpawnSettings.RedChance,
	}
}

// LoadConfig reads a YAML match file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over the defaults. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Width < 5 || c.Height < 5:
		return fmt.Errorf("board must be at least 5x5, got %dx%d", c.Width, c.Height)
	case c.Bots < 1 || c.Bots > MaxBots:
		return fmt.Errorf("bots must be between 1 and %d, got %d", MaxBots, c.Bots)
	case c.Ticks < 1:
		return fmt.Errorf("ticks must be positive, got %d", c.Ticks)
	case c.MinimumDiamonds < 0:
		return fmt.Errorf("minimum_diamonds must not be negative, got %d", c.MinimumDiamonds)
	case c.RedChance < 0 || c.RedChance > 100:
		return fmt.Errorf("red_chance must be between 0 and 100, got %d", c.RedChance)
	}
	return nil
}

func (c Config) spawn() game.SpawnSettings {
	return game.SpawnSettings{MinimumDiamonds: c.MinimumDiamonds, RedChance: c.RedChance}
}
