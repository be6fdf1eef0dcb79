// Package config loads and saves the treelights YAML configuration.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SPI selects and tunes the SPI transport.
type SPI struct {
	Port    string `yaml:"port"`     // spireg name; "" means the first port found
	SpeedHz int    `yaml:"speed_hz"` // e.g. 1000000
}

type Config struct {
	Driver           string   `yaml:"driver"` // "spi" | "term"
	LEDs             int      `yaml:"leds"`
	FPS              int      `yaml:"fps"`
	Brightness       int      `yaml:"brightness"` // seeded once at startup, 1..31
	FramesPerPattern int      `yaml:"frames_per_pattern"`
	Patterns         []string `yaml:"patterns"`

	SPI SPI `yaml:"spi,omitempty"`
}

// Default returns the stock tree setup: 25 LEDs, two frames a second,
// all four patterns in rotation.
func Default() *Config {
	return &Config{
		Driver:           "spi",
		LEDs:             25,
		FPS:              2,
		Brightness:       1,
		FramesPerPattern: 40,
		Patterns:         []string{"swirl", "spin", "sparkle", "random"},
		SPI:              SPI{SpeedHz: 1000000},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
