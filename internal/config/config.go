package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. POLLS_DATABASE_URL.
const EnvPrefix = "POLLS"

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PollsConfig struct {
	InviteCodeLength   int `mapstructure:"invite_code_length"`
	InviteCodeAttempts int `mapstructure:"invite_code_attempts"`
}

type Config struct {
	ServerPort string         `mapstructure:"server_port"`
	JWTSecret  string         `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration  `mapstructure:"token_ttl"`
	Database   DatabaseConfig `mapstructure:"database"`
	Log        LogConfig      `mapstructure:"log"`
	CORS       CORSConfig     `mapstructure:"cors"`
	Polls      PollsConfig    `mapstructure:"polls"`
}

var defaults = map[string]interface{}{
	"server_port":                "8080",
	"token_ttl":                  "24h",
	"database.driver":            "postgres",
	"log.level":                  "info",
	"log.format":                 "console",
	"cors.allowed_origins":       []string{"http://localhost:3000"},
	"polls.invite_code_length":   8,
	"polls.invite_code_attempts": 5,
}

// flag name -> config key
var flagKeys = map[string]string{
	"port":         "server_port",
	"database-url": "database.url",
	"driver":       "database.driver",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// Load builds the configuration from, in increasing priority: defaults,
// config.yaml (from --config, or . and ./config), POLLS_* environment
// variables and command-line flags.
func Load(args []string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	fs := pflag.NewFlagSet("pollroom", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a config file")
	fs.String("port", "8080", "HTTP listen port")
	fs.String("database-url", "", "database connection string")
	fs.String("driver", "postgres", "database driver (postgres or sqlite)")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "console", "log format (console or json)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", name)
		}
	}

	v.SetConfigType("yaml")
	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without a default are only seen by Unmarshal once bound.
	for _, key := range []string{"jwt_secret", "database.url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", key)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret must be set")
	}
	if c.Database.URL == "" {
		return errors.New("database.url must be set")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if n := c.Polls.InviteCodeLength; n < 4 || n > 10 {
		return errors.Errorf("polls.invite_code_length must be between 4 and 10, got %d", n)
	}
	if c.Polls.InviteCodeAttempts <= 0 {
		return errors.New("polls.invite_code_attempts must be positive")
	}
	return nil
}
