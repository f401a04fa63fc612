package experiment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/drakos74/free-bayes/internal/metrics"
	"github.com/drakos74/free-bayes/internal/model"
	"github.com/drakos74/free-bayes/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDataset creates a dataset where the first attribute mostly follows the class.
func newDataset(n int) model.Dataset {
	ds := make(model.Dataset, n)
	for i := 0; i < n; i++ {
		class := "benign"
		if i%3 == 0 {
			class = "malignant"
		}
		signal := class
		if i%10 == 0 {
			signal = "noise"
		}
		ds[i] = model.Record{
			ID:         fmt.Sprintf("%d", 1000+i),
			Attributes: []string{signal, fmt.Sprintf("%d", i%4), fmt.Sprintf("%d", i%7)},
			Class:      class,
		}
	}
	return ds
}

func TestRun(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := metrics.NewPrometheusMetrics(registry)
	require.NoError(t, err)
	st := storage.NewMockStorage()

	ds := newDataset(103)
	report, err := Run(context.Background(), ds, Options{
		Dataset: "synthetic",
		Metrics: m,
		Storage: st,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, Algorithm, report.Algorithm)
	assert.Equal(t, 5, report.Folds)
	assert.Equal(t, len(ds), report.Instances)
	require.Len(t, report.Experiments, 5)
	require.Len(t, report.Accuracy, 5)

	total := 0
	seen := make(map[string]bool)
	for i, exp := range report.Experiments {
		assert.Equal(t, i, exp.Index)
		assert.Equal(t, len(ds), exp.Training+exp.Instances)
		assert.Len(t, exp.Predictions, exp.Instances)
		assert.Equal(t, report.Accuracy[i], exp.Accuracy)
		assert.GreaterOrEqual(t, exp.Accuracy, 0.0)
		assert.LessOrEqual(t, exp.Accuracy, 1.0)
		assert.Equal(t, []string{"malignant", "benign"}, exp.Classes)
		assert.InDelta(t, 1.0, exp.Priors["malignant"]+exp.Priors["benign"], 1e-9)
		assert.NotEmpty(t, exp.Likelihoods)
		assert.Nil(t, exp.Baseline)
		for _, p := range exp.Predictions {
			assert.False(t, seen[p.ID], p.ID)
			seen[p.ID] = true
		}
		total += exp.Instances
	}
	assert.Equal(t, len(ds), total)

	// the first attribute is a strong signal
	assert.Greater(t, report.Summary.Mean, 0.8)
	assert.Nil(t, report.Baseline)
	assert.InDelta(t, report.Summary.Mean, report.Evaluation.Accuracy, 0.05)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Experiments.WithLabelValues("ok")))
	assert.Equal(t, float64(len(ds)),
		testutil.ToFloat64(m.Predictions.WithLabelValues("true"))+testutil.ToFloat64(m.Predictions.WithLabelValues("false")))

	stored, err := Load(st, report.Key())
	require.NoError(t, err)
	assert.Equal(t, report.ID, stored.ID)
	assert.Equal(t, report.Accuracy, stored.Accuracy)
	assert.Equal(t, report.Summary, stored.Summary)
	assert.Equal(t, report.Experiments[0].Predictions, stored.Experiments[0].Predictions)
}

func TestRun_Deterministic(t *testing.T) {
	ds := newDataset(57)
	first, err := Run(context.Background(), ds, Options{Workers: 1})
	require.NoError(t, err)
	next, err := Run(context.Background(), ds, Options{Workers: 5})
	require.NoError(t, err)
	assert.Equal(t, first.Accuracy, next.Accuracy)
	for i := range first.Experiments {
		assert.Equal(t, first.Experiments[i].Predictions, next.Experiments[i].Predictions)
		assert.Equal(t, first.Experiments[i].Likelihoods, next.Experiments[i].Likelihoods)
	}
	assert.NotEqual(t, first.ID, next.ID)
}

func TestRun_Baseline(t *testing.T) {
	report, err := Run(context.Background(), newDataset(50), Options{
		Folds:    5,
		Baseline: true,
		Trees:    10,
	})
	require.NoError(t, err)
	require.NotNil(t, report.Baseline)
	assert.Equal(t, 5, report.Baseline.Count)
	for _, exp := range report.Experiments {
		require.NotNil(t, exp.Baseline)
		assert.GreaterOrEqual(t, *exp.Baseline, 0.0)
		assert.LessOrEqual(t, *exp.Baseline, 1.0)
	}
}

func TestRun_Errors(t *testing.T) {

	type test struct {
		ds   model.Dataset
		opts Options
		err  error
	}

	tests := map[string]test{
		"empty": {
			ds:  model.Dataset{},
			err: model.ConfigErr,
		},
		"one-fold": {
			ds:   newDataset(10),
			opts: Options{Folds: 1},
			err:  model.ConfigErr,
		},
		"empty-test-fold": {
			ds:  newDataset(3),
			err: model.EmptyInputErr,
		},
		"ragged": {
			ds: append(newDataset(10), model.Record{
				ID:         "x",
				Attributes: []string{"a"},
				Class:      "benign",
			}),
			err: model.ShapeErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := metrics.NewPrometheusMetrics(nil)
			require.NoError(t, err)
			tt.opts.Metrics = m
			_, err = Run(context.Background(), tt.ds, tt.opts)
			assert.True(t, errors.Is(err, tt.err), err)
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, newDataset(20), Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_StorageFailure(t *testing.T) {
	report, err := Run(context.Background(), newDataset(20), Options{
		Storage: failingStorage{},
	})
	assert.Error(t, err)
	assert.NotNil(t, report)
}

func TestRun_NoStorage(t *testing.T) {
	report, err := Run(context.Background(), newDataset(20), Options{})
	require.NoError(t, err)
	// without a storage the report is discarded
	_, err = Load(storage.NewVoidStorage(), report.Key())
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}

type failingStorage struct{}

func (failingStorage) Store(k storage.Key, value interface{}) error {
	return fmt.Errorf("disk full")
}

func (failingStorage) Load(k storage.Key, value interface{}) error {
	return storage.NotFoundErr
}
