package config

import (
	"os"
	"strconv"

	"github.com/jsphweid/midgrid/constants"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TicksPerBeat    uint16  `yaml:"ticks_per_beat"`
	DefaultTempo    float64 `yaml:"default_tempo"`
	DefaultPatch    uint8   `yaml:"default_patch"`
	DefaultVelocity uint8   `yaml:"default_velocity"`
	ReportExtension string  `yaml:"report_extension"`
	LogLevel        string  `yaml:"log_level"`
}

func Default() Config {
	return Config{
		TicksPerBeat:    constants.TicksPerBeat,
		DefaultTempo:    constants.DefaultTempo,
		DefaultPatch:    constants.DefaultPatch,
		DefaultVelocity: constants.DefaultVelocity,
		ReportExtension: constants.ReportExtension,
		LogLevel:        "info",
	}
}

// Load layers an optional YAML file and then environment variables over the
// defaults. An empty path falls back to MIDGRID_CONFIG.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		path = constants.GetConfigPath()
	}
	if path != "" {
		dat, err := os.ReadFile(path)
		if err != nil {
			return c, errors.Wrap(err, "reading config file")
		}
		if err := yaml.Unmarshal(dat, &c); err != nil {
			return c, errors.Wrapf(err, "parsing config file %v", path)
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MIDGRID_TICKS_PER_BEAT"); v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return errors.Wrap(err, "MIDGRID_TICKS_PER_BEAT")
		}
		c.TicksPerBeat = uint16(n)
	}
	if v := os.Getenv("MIDGRID_TEMPO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(err, "MIDGRID_TEMPO")
		}
		c.DefaultTempo = f
	}
	if v := os.Getenv("MIDGRID_PATCH"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return errors.Wrap(err, "MIDGRID_PATCH")
		}
		c.DefaultPatch = uint8(n)
	}
	if v := os.Getenv("MIDGRID_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MIDGRID_REPORT_EXT"); v != "" {
		c.ReportExtension = v
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.TicksPerBeat == 0:
		return errors.New("ticks_per_beat must be > 0")
	case c.DefaultTempo <= 0:
		return errors.New("default_tempo must be > 0")
	case c.DefaultPatch > 127:
		return errors.New("default_patch must be <= 127")
	case c.DefaultVelocity > 127:
		return errors.New("default_velocity must be <= 127")
	case c.ReportExtension == "":
		return errors.New("report_extension must not be empty")
	}
	return nil
}
