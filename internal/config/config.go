// Package config loads process configuration from an optional YAML file,
// MIIRENDER_ environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"miirender/internal/output"
	"miirender/internal/view"
)

const EnvPrefix = "MIIRENDER"

type Config struct {
	Log     Log     `mapstructure:"log" json:"log"`
	Backend Backend `mapstructure:"backend" json:"backend"`
	Gateway Gateway `mapstructure:"gateway" json:"gateway"`
	Presets Presets `mapstructure:"presets" json:"presets"`
	NNID    NNID    `mapstructure:"nnid" json:"nnid"`
}

type Log struct {
	Level  string `mapstructure:"level" json:"level"`
	Pretty bool   `mapstructure:"pretty" json:"pretty"`
}

// Backend configures the render socket server.
type Backend struct {
	Addr string `mapstructure:"addr" json:"addr"`
	// BodyScale is "apply" or "limit".
	BodyScale string `mapstructure:"body_scale" json:"body_scale"`
}

// ScaleFormula parses BodyScale.
func (b Backend) ScaleFormula() (view.ScaleFormula, error) {
	return view.ParseScaleFormula(b.BodyScale)
}

// Gateway configures the HTTP front-end.
type Gateway struct {
	Addr             string        `mapstructure:"addr" json:"addr"`
	Upstream         string        `mapstructure:"upstream" json:"upstream"`
	CORSOrigin       string        `mapstructure:"cors_origin" json:"cors_origin"`
	CacheEntries     int           `mapstructure:"cache_entries" json:"cache_entries"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout" json:"dial_timeout"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	MaxWidth         int           `mapstructure:"max_width" json:"max_width"`
	MaxInstances     int           `mapstructure:"max_instances" json:"max_instances"`
	MaxTexResolution int           `mapstructure:"max_tex_resolution" json:"max_tex_resolution"`
}

type Presets struct {
	Path  string `mapstructure:"path" json:"path"`
	Watch bool   `mapstructure:"watch" json:"watch"`
}

// NNID configures the optional NNID lookup database. An empty DSN turns
// lookups off.
type NNID struct {
	Driver string `mapstructure:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" json:"dsn"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("backend.addr", "localhost:12346")
	v.SetDefault("backend.body_scale", "apply")

	v.SetDefault("gateway.addr", ":5000")
	v.SetDefault("gateway.upstream", "localhost:12346")
	v.SetDefault("gateway.cors_origin", "")
	v.SetDefault("gateway.cache_entries", 256)
	v.SetDefault("gateway.dial_timeout", 2*time.Second)
	v.SetDefault("gateway.read_timeout", 30*time.Second)
	v.SetDefault("gateway.max_width", 4096)
	v.SetDefault("gateway.max_instances", 20)
	v.SetDefault("gateway.max_tex_resolution", 4096)

	v.SetDefault("presets.path", "")
	v.SetDefault("presets.watch", true)

	v.SetDefault("nnid.driver", "sqlite")
	v.SetDefault("nnid.dsn", "")
}

// Load reads path (if not empty) into v and decodes the result. Flags
// should be bound to v before calling Load.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values that would only fail later at request time.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Backend.ScaleFormula(); err != nil {
		errs = append(errs, err)
	}
	if c.Gateway.MaxWidth <= 0 {
		errs = append(errs, fmt.Errorf("gateway.max_width must be positive, got %d", c.Gateway.MaxWidth))
	}
	// A single supersampled full body frame must fit an image header.
	if rows := (view.Resolver{}).Resolve(view.ViewAllBodySugar, 0, 0).AspectFactor.Ceil(c.Gateway.MaxWidth * 2); rows > output.MaxDimension {
		errs = append(errs, fmt.Errorf("gateway.max_width %d renders %d rows, over the %d row limit", c.Gateway.MaxWidth, rows, output.MaxDimension))
	}
	if c.Gateway.MaxInstances <= 0 || c.Gateway.MaxInstances > 255 {
		errs = append(errs, fmt.Errorf("gateway.max_instances must be in 1..255, got %d", c.Gateway.MaxInstances))
	}
	if c.Gateway.MaxTexResolution < 2 || c.Gateway.MaxTexResolution > 32767 {
		errs = append(errs, fmt.Errorf("gateway.max_tex_resolution must be in 2..32767, got %d", c.Gateway.MaxTexResolution))
	}
	return errors.Join(errs...)
}
