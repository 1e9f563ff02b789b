package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/HerbHall/netsampler/internal/collect"
	"github.com/HerbHall/netsampler/internal/delta"
	"github.com/HerbHall/netsampler/internal/store"
)

// EnvPrefix is prepended to environment overrides, e.g.
// NETSAMPLER_STORE_DIR or NETSAMPLER_SAMPLER_SLEEP_INTERVAL.
const EnvPrefix = "NETSAMPLER"

// Settings is the typed sampler configuration.
type Settings struct {
	Collector CollectorSettings `mapstructure:"collector"`
	Store     StoreSettings     `mapstructure:"store"`
	Sampler   SamplerSettings   `mapstructure:"sampler"`
	Log       LogSettings       `mapstructure:"log"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type CollectorSettings struct {
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Marker  string        `mapstructure:"marker"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreSettings struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	File    string `mapstructure:"file"`
}

type SamplerSettings struct {
	SleepInterval time.Duration `mapstructure:"sleep_interval"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetrySettings controls the self-metrics textfile. An empty Textfile
// disables it.
type TelemetrySettings struct {
	Textfile string `mapstructure:"textfile"`
}

// SetDefaults registers every key with its default so that env overrides
// resolve and Unmarshal sees a complete tree.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("collector.command", collect.DefaultCommand)
	v.SetDefault("collector.args", collect.DefaultArgs)
	v.SetDefault("collector.marker", collect.DefaultMarker)
	v.SetDefault("collector.timeout", time.Duration(0))
	v.SetDefault("store.backend", store.BackendFile)
	v.SetDefault("store.dir", store.DefaultDir())
	v.SetDefault("store.file", "")
	v.SetDefault("sampler.sleep_interval", delta.DefaultInterval)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "json")
	v.SetDefault("telemetry.textfile", "")
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment apply; a named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}
	return New(v), nil
}

// Settings decodes and validates the typed settings.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	if err := c.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings the sampler cannot run with.
func (s Settings) Validate() error {
	var errs []error
	switch s.Store.Backend {
	case store.BackendFile, store.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", s.Store.Backend))
	}
	if s.Collector.Command == "" {
		errs = append(errs, errors.New("collector.command: must not be empty"))
	}
	if s.Collector.Timeout < 0 {
		errs = append(errs, errors.New("collector.timeout: must not be negative"))
	}
	if s.Sampler.SleepInterval < 0 {
		errs = append(errs, errors.New("sampler.sleep_interval: must not be negative"))
	}
	switch s.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", s.Log.Format))
	}
	return errors.Join(errs...)
}
