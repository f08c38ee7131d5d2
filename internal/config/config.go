// Package config loads the service configuration from a TOML file,
// writing the defaults on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"listrigo/internal/item"
)

const (
	DefaultConfigFileName = "listrigo.toml"
	DefaultDBName         = "listrigo.db"
)

type Deadline struct {
	IntervalSeconds int    `toml:"interval_seconds"`
	LookbackMinutes int    `toml:"lookback_minutes"`
	Cutoff          string `toml:"cutoff"` // "end_of_day" or a fixed "15:04"
}

type PersonEntry struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Image string `toml:"image"`
}

type Config struct {
	Listen     string        `toml:"listen"`
	DBPath     string        `toml:"db_path"`
	DebounceMS int           `toml:"debounce_ms"`
	Deadline   Deadline      `toml:"deadline"`
	Persons    []PersonEntry `toml:"persons"`
}

// Debounce returns the save quiet period as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// PollInterval returns the deadline scan interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Deadline.IntervalSeconds) * time.Second
}

// Lookback returns the deadline lookback window as a duration.
func (c Config) Lookback() time.Duration {
	return time.Duration(c.Deadline.LookbackMinutes) * time.Minute
}

// Cutoff parses the configured date-only cutoff policy.
func (c Config) Cutoff() (item.Cutoff, error) {
	cutoff, err := item.ParseCutoff(c.Deadline.Cutoff)
	if err != nil {
		return item.Cutoff{}, fmt.Errorf("invalid deadline cutoff %q: %w", c.Deadline.Cutoff, err)
	}
	return cutoff, nil
}

// PersonList converts the configured persons to the item model.
func (c Config) PersonList() []item.Person {
	out := make([]item.Person, 0, len(c.Persons))
	for _, p := range c.Persons {
		out = append(out, item.Person{ID: p.ID, Name: p.Name, Image: p.Image})
	}
	return out
}

// LoadOrCreate reads the config at path, writing the defaults first
// when the file does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8095"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 200
	}
	if cfg.Deadline.IntervalSeconds <= 0 {
		cfg.Deadline.IntervalSeconds = 60
	}
	if cfg.Deadline.LookbackMinutes <= 0 {
		cfg.Deadline.LookbackMinutes = 60
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		Listen:     ":8095",
		DBPath:     DefaultDBName,
		DebounceMS: 200,
		Deadline: Deadline{
			IntervalSeconds: 60,
			LookbackMinutes: 60,
			Cutoff:          "end_of_day",
		},
	}
}
