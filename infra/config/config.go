package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/drakos74/free-bayes/internal/data"
	"github.com/drakos74/free-bayes/internal/fold"
	"github.com/drakos74/free-bayes/internal/math/ml"
	"github.com/drakos74/free-bayes/internal/model"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Experiment is the configuration of a cross validation run.
type Experiment struct {
	Dataset   string `json:"dataset" yaml:"dataset"`
	Separator string `json:"separator" yaml:"separator"`
	Header    bool   `json:"header" yaml:"header"`
	Folds     int    `json:"folds" yaml:"folds"`
	Workers   int    `json:"workers" yaml:"workers"`
	Trace     string `json:"trace" yaml:"trace"`
	Summary   string `json:"summary" yaml:"summary"`
	Storage   string `json:"storage" yaml:"storage"`
	Baseline  bool   `json:"baseline" yaml:"baseline"`
	Trees     int    `json:"trees" yaml:"trees"`
	Debug     bool   `json:"debug" yaml:"debug"`
}

// Default returns the configuration with all defaults applied.
func Default() Experiment {
	return Experiment{}.WithDefaults()
}

// WithDefaults fills in the unset fields.
func (e Experiment) WithDefaults() Experiment {
	if e.Separator == "" {
		e.Separator = data.DefaultSeparator
	}
	if e.Folds == 0 {
		e.Folds = fold.K
	}
	if e.Workers == 0 {
		e.Workers = e.Folds
	}
	if e.Trees == 0 {
		e.Trees = ml.DefaultTrees
	}
	return e
}

// Validate checks that the configuration can be used for a run.
func (e Experiment) Validate() error {
	if e.Dataset == "" {
		return fmt.Errorf("dataset path is missing: %w", model.ConfigErr)
	}
	if e.Folds <= 1 {
		return fmt.Errorf("need at least 2 folds, got %d: %w", e.Folds, model.ConfigErr)
	}
	if e.Workers <= 0 {
		return fmt.Errorf("need at least 1 worker, got %d: %w", e.Workers, model.ConfigErr)
	}
	if e.Trees < 0 {
		return fmt.Errorf("invalid number of trees %d: %w", e.Trees, model.ConfigErr)
	}
	return nil
}

// Load loads the config from the given file.
// Files ending in .yaml or .yml are parsed as yaml, everything else as json.
func Load(path string) (Experiment, error) {
	var cfg Experiment

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not load config '%s': %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("could not unmarshal config '%s': %s: %w", path, err.Error(), model.ConfigErr)
	}

	log.Info().Str("path", path).Msg("loaded config")

	return cfg.WithDefaults(), nil
}
