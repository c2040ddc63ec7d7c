package main

import (
	"log/slog"
	"time"

	"github.com/myrjola/masks/internal/apiclient"
	"github.com/myrjola/masks/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type config struct {
	// APIURL overrides the base URL that Production picks, e.g., "http://localhost:4000/api".
	APIURL     string        `mapstructure:"api_url"`
	Production bool          `mapstructure:"production"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	SqliteURL  string        `mapstructure:"sqlite_url"`
	Verbose    bool          `mapstructure:"verbose"`
}

// flagKeys maps the persistent flags to their configuration keys.
var flagKeys = map[string]string{
	"api-url":     "api_url",
	"production":  "production",
	"timeout":     "timeout",
	"retry-delay": "retry_delay",
	"sqlite-url":  "sqlite_url",
	"verbose":     "verbose",
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to a configuration file (default ./masks.yaml when present)")
	flags.String("api-url", "", "base URL of the campaign API")
	flags.Bool("production", false, "talk to the hosted API instead of the local one")
	flags.Duration("timeout", apiclient.DefaultTimeout, "timeout of a single API request")
	flags.Duration("retry-delay", apiclient.DefaultRetryDelay, "delay before replaying a request that met a sleeping API")
	flags.String("sqlite-url", "./masks.sqlite3", "path to the SQLite database used by the db commands")
	flags.BoolP("verbose", "v", false, "log debug messages")
}

// loadConfig resolves the configuration from flags, MASKS_* environment variables and the optional config file,
// in that order of precedence.
func loadConfig(flags *pflag.FlagSet) (config, error) {
	v := viper.New()

	v.SetDefault("api_url", "")
	v.SetDefault("production", false)
	v.SetDefault("timeout", apiclient.DefaultTimeout)
	v.SetDefault("retry_delay", apiclient.DefaultRetryDelay)
	v.SetDefault("sqlite_url", "./masks.sqlite3")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("MASKS")
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return config{}, errors.Wrap(err, "bind flag", slog.String("flag", flag))
		}
	}

	configFile, err := flags.GetString("config")
	if err != nil {
		return config{}, errors.Wrap(err, "read config flag")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("masks")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return config{}, errors.Wrap(err, "read config file")
		}
	}

	var cfg config
	if err = v.Unmarshal(&cfg); err != nil {
		return config{}, errors.Wrap(err, "unmarshal config")
	}
	return cfg, nil
}

// baseURL returns the configured API URL, falling back to the hosted or local default.
func (c config) baseURL() string {
	return apiclient.ResolveBaseURL(func(string) (string, bool) {
		return c.APIURL, c.APIURL != ""
	}, c.Production)
}
