package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/free-bayes/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {

	type test struct {
		file    string
		content string
		cfg     Experiment
		err     error
	}

	tests := map[string]test{
		"json": {
			file:    "cv.json",
			content: `{"dataset":"breast-cancer-wisconsin.data","folds":10,"baseline":true}`,
			cfg: Experiment{
				Dataset:   "breast-cancer-wisconsin.data",
				Separator: ",",
				Folds:     10,
				Workers:   10,
				Baseline:  true,
				Trees:     100,
			},
		},
		"yaml": {
			file: "cv.yaml",
			content: `
dataset: iris.data
separator: ";"
header: true
workers: 2
trace: out/trace.txt
`,
			cfg: Experiment{
				Dataset:   "iris.data",
				Separator: ";",
				Header:    true,
				Folds:     5,
				Workers:   2,
				Trace:     "out/trace.txt",
				Trees:     100,
			},
		},
		"broken": {
			file:    "cv.json",
			content: `{"dataset":`,
			err:     model.ConfigErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			cfg, err := Load(path)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg, cfg)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestExperiment_Validate(t *testing.T) {

	tests := map[string]Experiment{
		"no-dataset": Default(),
		"one-fold":   {Dataset: "x", Folds: 1, Workers: 1},
		"no-workers": {Dataset: "x", Folds: 5, Workers: -1},
		"bad-trees":  {Dataset: "x", Folds: 5, Workers: 1, Trees: -1},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			assert.True(t, errors.Is(cfg.Validate(), model.ConfigErr))
		})
	}

	cfg := Default()
	cfg.Dataset = "x"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Folds)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, ",", cfg.Separator)
}
