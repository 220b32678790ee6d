package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project string        `yaml:"project"`
	Version int           `yaml:"version"`
	Lessons LessonsConfig `yaml:"lessons"`
	Store   StoreConfig   `yaml:"store"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Widgets WidgetsConfig `yaml:"widgets"`
	Log     LogConfig     `yaml:"log"`
}

type LessonsConfig struct {
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
}

// StoreConfig points at the telemetry archive. An empty driver disables
// archiving; live engine state is in memory either way.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RuntimeConfig struct {
	TimeoutMS int            `yaml:"timeout_ms"`
	Ranges    []RuntimeRange `yaml:"ranges"`
}

// RuntimeRange routes an inclusive lesson-id range to a language runtime.
type RuntimeRange struct {
	Min      int    `yaml:"min"`
	Max      int    `yaml:"max"`
	Language string `yaml:"language"`
}

type WidgetsConfig struct {
	StepDelayMS int `yaml:"step_delay_ms"`
}

type LogConfig struct {
	JSONFile string `yaml:"json_file"`
	Debug    bool   `yaml:"debug"`
}

func (c RuntimeConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c WidgetsConfig) StepDelay() time.Duration {
	if c.StepDelayMS <= 0 {
		return 700 * time.Millisecond
	}
	return time.Duration(c.StepDelayMS) * time.Millisecond
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if len(cfg.Lessons.Paths) == 0 {
		return fmt.Errorf("at least one lesson path is required")
	}

	switch cfg.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if cfg.Store.Driver != "" && strings.TrimSpace(cfg.Store.DSN) == "" {
		return fmt.Errorf("store dsn is required for driver %s", cfg.Store.Driver)
	}

	for i, r := range cfg.Runtime.Ranges {
		if r.Min > r.Max {
			return fmt.Errorf("runtime range %d: min %d above max %d", i, r.Min, r.Max)
		}
		if strings.TrimSpace(r.Language) == "" {
			return fmt.Errorf("runtime range %d: language is required", i)
		}
	}

	return nil
}
