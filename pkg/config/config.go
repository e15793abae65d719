// Package config loads the YAML settings of partitioning and boosting runs.
//
// Example file:
//
//	log:
//	  level: info
//	partition:
//	  groups: 5
//	  randomize: true
//	  seed: 42
//	boosting:
//	  depth: 10
//	  weight_update: adaboost
package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/boostcv/pkg/errors"
	"github.com/YuminosukeSato/boostcv/pkg/log"
	"github.com/YuminosukeSato/boostcv/sklearn/ensemble"
	"github.com/YuminosukeSato/boostcv/sklearn/model_selection"
)

// Weight update rules accepted in boosting.weight_update.
const (
	WeightUpdateStatic   = "static"
	WeightUpdateAdaBoost = "adaboost"
)

// Config is the root of the YAML document.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Partition PartitionConfig `yaml:"partition"`
	Boosting  BoostingConfig  `yaml:"boosting"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" (zerolog) or "json" (slog)
}

// PartitionConfig holds the fold settings.
type PartitionConfig struct {
	Groups    int  `yaml:"groups"`
	Randomize bool `yaml:"randomize"`
	// Seed is nil when the shuffle should be seeded from the clock.
	Seed     *uint64 `yaml:"seed"`
	FoldFile string  `yaml:"fold_file"`
}

// BoostingConfig holds the boosting loop settings.
type BoostingConfig struct {
	Depth        int    `yaml:"depth"`
	WeightUpdate string `yaml:"weight_update"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "info", Format: "console"},
		Partition: PartitionConfig{Groups: 5},
		Boosting:  BoostingConfig{Depth: 10, WeightUpdate: WeightUpdateStatic},
	}
}

// Load reads and validates the YAML file at path. Missing keys keep their
// Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and returns the first violation as a
// ValidationError.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", err.Error(), c.Log.Level)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return errors.NewValidationError("log.format", "must be console or json", c.Log.Format)
	}
	if c.Partition.Groups < 1 {
		return errors.NewValidationError("partition.groups", "must be at least 1", c.Partition.Groups)
	}
	if c.Boosting.Depth < 1 {
		return errors.NewValidationError("boosting.depth", "must be at least 1", c.Boosting.Depth)
	}
	switch c.Boosting.WeightUpdate {
	case WeightUpdateStatic, WeightUpdateAdaBoost:
	default:
		return errors.NewValidationError("boosting.weight_update", "must be static or adaboost", c.Boosting.WeightUpdate)
	}
	return nil
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	return data, nil
}

// PartitionerOptions returns the options matching the partition section.
func (c *Config) PartitionerOptions() []model_selection.PartitionerOption {
	var opts []model_selection.PartitionerOption
	if c.Partition.Seed != nil {
		opts = append(opts, model_selection.WithSeed(*c.Partition.Seed))
	}
	return opts
}

// FoldAssignment returns the folds of a dataset with total rows: the
// holdout fold of partition.fold_file when set, otherwise a partition into
// partition.groups folds.
func (c *Config) FoldAssignment(total int) (model_selection.FoldAssignment, error) {
	if c.Partition.FoldFile != "" {
		return model_selection.LoadFoldFile(c.Partition.FoldFile)
	}
	return model_selection.NewPartitioner(c.PartitionerOptions()...).
		Partition(total, c.Partition.Groups, c.Partition.Randomize)
}

// EngineOptions returns the options matching the boosting section.
func (c *Config) EngineOptions() []ensemble.EngineOption {
	var opts []ensemble.EngineOption
	if c.Boosting.WeightUpdate == WeightUpdateAdaBoost {
		opts = append(opts, ensemble.WithWeightUpdater(ensemble.AdaBoostM1Weights{}))
	}
	return opts
}

// SetupLogging applies the log section to the process-wide logger.
func (c *Config) SetupLogging() error {
	return log.SetupLogger(c.Log.Level, c.Log.Format)
}
