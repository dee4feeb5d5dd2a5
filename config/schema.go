package config

import (
	"time"
)

// Config holds all cloner configuration.
type Config struct {
	// source instance connection/identity
	SourceEndpoint string `mapstructure:"source-endpoint"`
	SourceProject  string `mapstructure:"source-project"`
	SourceKey      string `mapstructure:"source-key"`
	SourceDatabase string `mapstructure:"source-database"`

	// destination instance connection/identity
	DestEndpoint string `mapstructure:"dest-endpoint"`
	DestProject  string `mapstructure:"dest-project"`
	DestKey      string `mapstructure:"dest-key"`
	DestDatabase string `mapstructure:"dest-database"`

	// Mode selects what is replicated: full, structure, data, or missing.
	Mode string `mapstructure:"mode"`

	// PageSize is the page size used for every remote listing call.
	PageSize int `mapstructure:"page-size"`

	// UniqueKeys maps a collection id to the field that uniquely identifies
	// its documents. Used by the missing-only mode; collections without a
	// mapping fall back to whole-content comparison.
	UniqueKeys map[string]string `mapstructure:"unique-key"`

	// Include and Exclude restrict replication to a subset of collections
	// (by id or name). Exclusion wins.
	Include []string `mapstructure:"include-collections"`
	Exclude []string `mapstructure:"exclude-collections"`

	// Snapshot is the path of the intermediate snapshot file.
	Snapshot string `mapstructure:"snapshot"`
	// Resume consumes an existing snapshot instead of re-fetching.
	Resume bool `mapstructure:"resume"`

	// Yes skips the destructive-clean confirmation prompt.
	Yes bool `mapstructure:"yes"`

	// MetricsPort, when non-zero, serves Prometheus metrics during the run.
	MetricsPort int `mapstructure:"metrics-port"`

	HTTPTimeout time.Duration `mapstructure:"http-timeout"`

	Log  LogConfig  `mapstructure:",squash"`
	Poll PollConfig `mapstructure:",squash"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"log-level"`
	JSON    bool   `mapstructure:"log-json"`
	NoColor bool   `mapstructure:"log-no-color"`
}

// PollConfig holds schema readiness polling configuration.
type PollConfig struct {
	// Interval between readiness re-fetches.
	Interval time.Duration `mapstructure:"poll-interval"`
	// AttributeAttempts is the attempt budget for attribute readiness.
	AttributeAttempts int `mapstructure:"attribute-poll-attempts"`
	// IndexAttempts is the attempt budget for index readiness.
	IndexAttempts int `mapstructure:"index-poll-attempts"`
}

// Defaults.
const (
	DefaultPageSize = 25
	MaxPageSize     = 500

	DefaultPollInterval          = time.Second
	DefaultAttributePollAttempts = 30
	DefaultIndexPollAttempts     = 60

	DefaultHTTPTimeout  = 30 * time.Second
	DefaultSnapshotPath = "snapshot.json"
)
