package config

import (
	"slices"

	"github.com/weehong/appwrite-database-cloner/errors"
)

// Modes accepted by --mode.
const (
	ModeFull          = "full"
	ModeStructureOnly = "structure"
	ModeDataOnly      = "data"
	ModeMissingOnly   = "missing"
)

//nolint:gochecknoglobals
var knownModes = []string{ModeFull, ModeStructureOnly, ModeDataOnly, ModeMissingOnly}

// Validate validates the Config for required fields and value ranges.
// Everything it rejects is a configuration error: reported before any
// remote call is made.
func Validate(cfg *Config) error {
	switch {
	case cfg.SourceEndpoint == "":
		return errors.New("source endpoint is empty")
	case cfg.SourceProject == "":
		return errors.New("source project is empty")
	case cfg.SourceKey == "":
		return errors.New("source API key is empty")
	case cfg.SourceDatabase == "":
		return errors.New("source database id is empty")
	case cfg.DestEndpoint == "":
		return errors.New("destination endpoint is empty")
	case cfg.DestProject == "":
		return errors.New("destination project is empty")
	case cfg.DestKey == "":
		return errors.New("destination API key is empty")
	case cfg.DestDatabase == "":
		return errors.New("destination database id is empty")
	}

	if cfg.SourceEndpoint == cfg.DestEndpoint &&
		cfg.SourceProject == cfg.DestProject &&
		cfg.SourceDatabase == cfg.DestDatabase {
		return errors.New("source and destination databases are identical")
	}

	if !slices.Contains(knownModes, cfg.Mode) {
		return errors.Errorf("unknown mode %q (expected one of: full, structure, data, missing)",
			cfg.Mode)
	}

	if cfg.PageSize < 1 || cfg.PageSize > MaxPageSize {
		return errors.Errorf("page size must be within [1 - %d], got %d", MaxPageSize, cfg.PageSize)
	}

	if cfg.Poll.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	if cfg.Poll.AttributeAttempts < 1 || cfg.Poll.IndexAttempts < 1 {
		return errors.New("poll attempt budgets must be at least 1")
	}

	if cfg.MetricsPort != 0 && (cfg.MetricsPort <= 1024 || cfg.MetricsPort > 65535) {
		return errors.New("metrics port value is outside the supported range [1024 - 65535]")
	}

	return nil
}
