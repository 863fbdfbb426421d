package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme overrides dashboard colors and chart size. Every field is optional.
//
//	series:
//	  digital-payments: "#0288D1"
//	tiles:
//	  coins: "#7B1FA2"
//	chart:
//	  width: 1280
type Theme struct {
	Series map[string]string `yaml:"series"`
	Tiles  map[string]string `yaml:"tiles"`
	Chart  struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"chart"`
}

// LoadTheme reads a YAML theme file, expanding ${VAR} references first.
func LoadTheme(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var t Theme
	if err := yaml.Unmarshal([]byte(expanded), &t); err != nil {
		return nil, fmt.Errorf("parse theme yaml: %w", err)
	}
	return &t, nil
}

// ApplyTheme loads c.ThemeFile, if any, and lets its chart size override the
// environment. The returned theme is empty when no file is configured.
func (c *Config) ApplyTheme() (*Theme, error) {
	if c.ThemeFile == "" {
		return &Theme{}, nil
	}
	t, err := LoadTheme(c.ThemeFile)
	if err != nil {
		return nil, err
	}
	if t.Chart.Width > 0 {
		c.ChartWidth = t.Chart.Width
	}
	if t.Chart.Height > 0 {
		c.ChartHeight = t.Chart.Height
	}
	return t, nil
}
