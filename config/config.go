// Package config provides configuration management for the cloner using Viper.
package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weehong/appwrite-database-cloner/errors"
)

// Load initializes Viper and returns a Config built from flags, environment
// variables, and an optional .env file in the working directory.
func Load(cmd *cobra.Command) (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	viper.SetEnvPrefix("ADBC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cmd.PersistentFlags() != nil {
		_ = viper.BindPFlags(cmd.PersistentFlags())
	}

	if cmd.Flags() != nil {
		_ = viper.BindPFlags(cmd.Flags())
	}

	bindEnvVars()

	var cfg Config

	err := viper.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}

	if cfg.Snapshot == "" {
		cfg.Snapshot = DefaultSnapshotPath
	}

	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}

	if cfg.Poll.Interval == 0 {
		cfg.Poll.Interval = DefaultPollInterval
	}

	if cfg.Poll.AttributeAttempts == 0 {
		cfg.Poll.AttributeAttempts = DefaultAttributePollAttempts
	}

	if cfg.Poll.IndexAttempts == 0 {
		cfg.Poll.IndexAttempts = DefaultIndexPollAttempts
	}
}

func bindEnvVars() {
	_ = viper.BindEnv("source-endpoint", "ADBC_SOURCE_ENDPOINT")
	_ = viper.BindEnv("source-project", "ADBC_SOURCE_PROJECT")
	_ = viper.BindEnv("source-key", "ADBC_SOURCE_KEY")
	_ = viper.BindEnv("source-database", "ADBC_SOURCE_DATABASE")

	_ = viper.BindEnv("dest-endpoint", "ADBC_DEST_ENDPOINT")
	_ = viper.BindEnv("dest-project", "ADBC_DEST_PROJECT")
	_ = viper.BindEnv("dest-key", "ADBC_DEST_KEY")
	_ = viper.BindEnv("dest-database", "ADBC_DEST_DATABASE")

	_ = viper.BindEnv("mode", "ADBC_MODE")
	_ = viper.BindEnv("page-size", "ADBC_PAGE_SIZE")
	_ = viper.BindEnv("snapshot", "ADBC_SNAPSHOT")

	_ = viper.BindEnv("log-level", "ADBC_LOG_LEVEL")
	_ = viper.BindEnv("log-json", "ADBC_LOG_JSON")
	_ = viper.BindEnv("log-no-color", "ADBC_LOG_NO_COLOR")

	_ = viper.BindEnv("http-timeout", "ADBC_HTTP_TIMEOUT")

	_ = viper.BindEnv("poll-interval", "ADBC_POLL_INTERVAL")
	_ = viper.BindEnv("attribute-poll-attempts", "ADBC_ATTRIBUTE_POLL_ATTEMPTS")
	_ = viper.BindEnv("index-poll-attempts", "ADBC_INDEX_POLL_ATTEMPTS")

	_ = viper.BindEnv("metrics-port", "ADBC_METRICS_PORT")
}
