package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/atvirokodosprendimai/guitarregistry/internal/errors"
)

// EnvPrefix marks environment variables read as configuration. Nested keys
// are separated by a double underscore: GUITARREG_LOG__LEVEL sets log.level.
const EnvPrefix = "GUITARREG_"

type Config struct {
	Log        Log        `koanf:"log"`
	Validation Validation `koanf:"validation"`
	Delivery   Delivery   `koanf:"delivery"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type Validation struct {
	// UnknownKeys is "ignore" or "reject".
	UnknownKeys string `koanf:"unknown_keys"`
}

type Delivery struct {
	WebhookURL    string        `koanf:"webhook_url"`
	WebhookSecret string        `koanf:"webhook_secret"`
	Timeout       time.Duration `koanf:"timeout"`
	MaxAttempts   int           `koanf:"max_attempts"`
	MaxBackoff    time.Duration `koanf:"max_backoff"`
}

func Default() Config {
	return Config{
		Log:        Log{Level: "info", Format: "json"},
		Validation: Validation{UnknownKeys: "ignore"},
		Delivery: Delivery{
			Timeout:     10 * time.Second,
			MaxAttempts: 5,
			MaxBackoff:  30 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and GUITARREG_* variables from environ, in that order of precedence.
// A nil environ reads the process environment.
func Load(path string, environ []string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	environFunc := os.Environ
	if environ != nil {
		environFunc = func() []string { return environ }
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:      EnvPrefix,
		EnvironFunc: environFunc,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	switch c.Validation.UnknownKeys {
	case "ignore", "reject":
	default:
		return errors.Errorf("validation.unknown_keys must be ignore or reject, got %q", c.Validation.UnknownKeys)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return errors.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	if c.Delivery.MaxAttempts < 1 {
		return errors.Errorf("delivery.max_attempts must be at least 1, got %d", c.Delivery.MaxAttempts)
	}
	return nil
}
