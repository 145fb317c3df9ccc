package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/tutis12/osubeatmap/dotosu"
)

const envPrefix = "OSUDECODE_"

// Config holds the settings of the command line tool. Values come from the
// defaults, then an optional INI file, then OSUDECODE_* environment variables.
type Config struct {
	// Decoder limits
	Velocity   dotosu.Limits
	Difficulty dotosu.DifficultyLimits

	// Output format of the summaries: json or yaml
	OutputFormat string

	// IndexPath is the SQLite database summaries are written to; empty disables it.
	IndexPath string

	Workers  int
	LogLevel string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Velocity:     dotosu.DefaultVelocityLimits,
		Difficulty:   dotosu.DefaultDifficultyLimits,
		OutputFormat: "json",
		Workers:      4,
		LogLevel:     "info",
	}
}

// Load reads path (when non-empty) over the defaults and applies environment
// overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
		if err != nil {
			return cfg, errors.WithStackTraceAndPrefix(err, "load config %s", path)
		}
		if err := cfg.applyFile(f); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyFile(f *ini.File) error {
	dec := f.Section("decoder")
	var err error
	if c.Velocity, err = limitsKey(dec, "velocity", c.Velocity); err != nil {
		return err
	}
	d := &c.Difficulty
	for _, l := range []struct {
		name string
		lim  *dotosu.Limits
	}{
		{"hp", &d.HPDrainRate},
		{"cs", &d.CircleSize},
		{"od", &d.OverallDifficulty},
		{"ar", &d.ApproachRate},
		{"slider_multiplier", &d.SliderMultiplier},
		{"slider_tick_rate", &d.SliderTickRate},
		{"mania_keys", &d.ManiaKeys},
	} {
		if *l.lim, err = limitsKey(dec, l.name, *l.lim); err != nil {
			return err
		}
	}

	c.OutputFormat = f.Section("output").Key("format").MustString(c.OutputFormat)
	c.IndexPath = f.Section("index").Key("path").MustString(c.IndexPath)

	rt := f.Section("runtime")
	if rt.HasKey("workers") {
		n, err := rt.Key("workers").Int()
		if err != nil {
			return errors.WithStackTraceAndPrefix(err, "[runtime] workers")
		}
		c.Workers = n
	}
	c.LogLevel = rt.Key("log_level").MustString(c.LogLevel)
	return nil
}

// limitsKey reads <name>_min and <name>_max.
func limitsKey(sec *ini.Section, name string, def dotosu.Limits) (dotosu.Limits, error) {
	out := def
	for _, k := range []struct {
		key string
		dst *float64
	}{
		{name + "_min", &out.Min},
		{name + "_max", &out.Max},
	} {
		if !sec.HasKey(k.key) {
			continue
		}
		v, err := sec.Key(k.key).Float64()
		if err != nil {
			return def, errors.WithStackTraceAndPrefix(err, "[%s] %s", sec.Name(), k.key)
		}
		*k.dst = v
	}
	return out, nil
}

func (c *Config) applyEnv() {
	c.Velocity.Min = envFloat("VELOCITY_MIN", c.Velocity.Min)
	c.Velocity.Max = envFloat("VELOCITY_MAX", c.Velocity.Max)
	c.OutputFormat = envStr("FORMAT", c.OutputFormat)
	c.IndexPath = envStr("INDEX", c.IndexPath)
	c.Workers = envInt("WORKERS", c.Workers)
	c.LogLevel = envStr("LOG_LEVEL", c.LogLevel)
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Velocity.Min <= 0 || c.Velocity.Min > c.Velocity.Max {
		return errors.WithStackTrace(fmt.Errorf("velocity limits [%v,%v] invalid", c.Velocity.Min, c.Velocity.Max))
	}
	d := c.Difficulty
	for name, l := range map[string]dotosu.Limits{
		"hp": d.HPDrainRate, "cs": d.CircleSize, "od": d.OverallDifficulty, "ar": d.ApproachRate,
		"slider_multiplier": d.SliderMultiplier, "slider_tick_rate": d.SliderTickRate, "mania_keys": d.ManiaKeys,
	} {
		if l.Min > l.Max {
			return errors.WithStackTrace(fmt.Errorf("%s limits [%v,%v] invalid", name, l.Min, l.Max))
		}
	}
	if d.SliderMultiplier.Min <= 0 || d.SliderTickRate.Min <= 0 {
		return errors.WithStackTrace(fmt.Errorf("slider multiplier and tick rate must stay positive"))
	}
	switch strings.ToLower(c.OutputFormat) {
	case "json", "yaml":
	default:
		return errors.WithStackTrace(fmt.Errorf("unknown output format %q", c.OutputFormat))
	}
	if c.Workers < 1 {
		return errors.WithStackTrace(fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.WithStackTrace(err)
	}
	return nil
}

// DecoderOptions builds the options for dotosu.NewDecoder.
func (c Config) DecoderOptions(log logrus.FieldLogger) dotosu.Options {
	return dotosu.Options{
		Velocity:   c.Velocity,
		Difficulty: c.Difficulty,
		Logger:     log,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(envPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
