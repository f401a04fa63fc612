// Package experiment runs the k-fold cross validation of the naive bayes classifier.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/drakos74/free-bayes/internal/eval"
	"github.com/drakos74/free-bayes/internal/fold"
	coinmath "github.com/drakos74/free-bayes/internal/math"
	"github.com/drakos74/free-bayes/internal/math/ml"
	"github.com/drakos74/free-bayes/internal/metrics"
	"github.com/drakos74/free-bayes/internal/model"
	"github.com/drakos74/free-bayes/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Algorithm is the name reported for the runs.
const Algorithm = "Naive Bayes"

// Options configures a cross validation run.
type Options struct {
	// Dataset is the name of the dataset used in the report.
	Dataset string
	Folds   int
	Workers int
	// Baseline enables the random forest comparison on every rotation.
	Baseline bool
	Trees    int
	Metrics  *metrics.Prometheus
	Storage  storage.Persistence
}

// Experiment is the outcome of a single rotation.
type Experiment struct {
	Index       int                `json:"index"`
	Accuracy    float64            `json:"accuracy"`
	Instances   int                `json:"instances"`
	Training    int                `json:"training"`
	Classes     []string           `json:"classes"`
	Priors      map[string]float64 `json:"priors"`
	Likelihoods []ml.Row           `json:"likelihoods"`
	Predictions []model.Prediction `json:"predictions"`
	Evaluation  eval.Evaluation    `json:"evaluation"`
	Baseline    *float64           `json:"baseline,omitempty"`
}

// Report is the outcome of a full cross validation run.
type Report struct {
	ID          string            `json:"id"`
	Algorithm   string            `json:"algorithm"`
	Dataset     string            `json:"dataset"`
	Folds       int               `json:"folds"`
	Instances   int               `json:"instances"`
	Created     time.Time         `json:"created"`
	Experiments []Experiment      `json:"experiments"`
	Accuracy    []float64         `json:"accuracy"`
	Summary     coinmath.Summary  `json:"summary"`
	Baseline    *coinmath.Summary `json:"baseline,omitempty"`
	Evaluation  eval.Evaluation   `json:"evaluation"`
}

// Key returns the storage key of the report.
func (r *Report) Key() storage.Key {
	return storage.Key{
		Dataset: r.Dataset,
		ID:      r.ID,
	}
}

// Run splits the dataset into stratified folds and runs one experiment per fold,
// using the fold as test set and the rest as training set.
// Experiments run in parallel, each on its own copy of the data and with its own model.
// The first failure cancels the remaining experiments and is returned.
func Run(ctx context.Context, ds model.Dataset, opts Options) (*Report, error) {
	if opts.Folds == 0 {
		opts.Folds = fold.K
	}
	if opts.Storage == nil {
		opts.Storage = storage.NewVoidStorage()
	}
	if opts.Workers <= 0 {
		opts.Workers = opts.Folds
	}

	folds, err := fold.Stratified(ds, opts.Folds)
	if err != nil {
		return nil, fmt.Errorf("could not split dataset: %w", err)
	}

	report := &Report{
		ID:          uuid.New().String(),
		Algorithm:   Algorithm,
		Dataset:     opts.Dataset,
		Folds:       opts.Folds,
		Instances:   len(ds),
		Created:     time.Now(),
		Experiments: make([]Experiment, opts.Folds),
	}

	log.Info().
		Str("id", report.ID).
		Str("dataset", opts.Dataset).
		Int("instances", len(ds)).
		Int("folds", opts.Folds).
		Int("workers", opts.Workers).
		Msg("starting cross validation")

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Workers)
	for i := range folds {
		i := i
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			exp, err := rotate(folds, i, opts)
			if err != nil {
				opts.Metrics.Failure()
				return fmt.Errorf("experiment %d failed: %w", i+1, err)
			}
			report.Experiments[i] = exp
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	report.Accuracy = make([]float64, len(report.Experiments))
	baseline := make([]float64, 0)
	predictions := make([]model.Prediction, 0, len(ds))
	for i, exp := range report.Experiments {
		report.Accuracy[i] = exp.Accuracy
		predictions = append(predictions, exp.Predictions...)
		if exp.Baseline != nil {
			baseline = append(baseline, *exp.Baseline)
		}
	}
	report.Summary = coinmath.Summarize(report.Accuracy)
	if len(baseline) > 0 {
		s := coinmath.Summarize(baseline)
		report.Baseline = &s
	}
	report.Evaluation = eval.Evaluate(predictions)

	log.Info().
		Str("id", report.ID).
		Float64("accuracy", report.Summary.Mean).
		Float64("stdev", report.Summary.StDev).
		Msg("cross validation completed")

	if err := opts.Storage.Store(report.Key(), report); err != nil {
		return report, fmt.Errorf("could not store report '%s': %w", report.ID, err)
	}

	return report, nil
}

func rotate(folds []model.Fold, i int, opts Options) (Experiment, error) {
	start := time.Now()

	training, test, err := fold.Rotate(folds, i)
	if err != nil {
		return Experiment{}, err
	}

	nb, err := ml.Train(training)
	if err != nil {
		return Experiment{}, fmt.Errorf("could not train: %w", err)
	}

	accuracy, predictions, instances, err := nb.Predict(test)
	if err != nil {
		return Experiment{}, fmt.Errorf("could not predict: %w", err)
	}

	exp := Experiment{
		Index:       i,
		Accuracy:    accuracy,
		Instances:   instances,
		Training:    len(training),
		Classes:     nb.Classes(),
		Priors:      nb.Priors(),
		Likelihoods: nb.Table(),
		Predictions: predictions,
		Evaluation:  eval.Evaluate(predictions),
	}

	if opts.Baseline {
		forest := ml.NewForest(opts.Trees)
		if err := forest.Fit(training); err != nil {
			return Experiment{}, fmt.Errorf("could not fit baseline: %w", err)
		}
		b, err := forest.Predict(test)
		if err != nil {
			return Experiment{}, fmt.Errorf("could not score baseline: %w", err)
		}
		exp.Baseline = &b
	}

	hits := 0
	for _, p := range predictions {
		hits += p.Hit()
	}
	opts.Metrics.Experiment(i, accuracy, hits, instances, time.Since(start))

	l := log.Debug().
		Int("experiment", i+1).
		Int("training", len(training)).
		Int("test", instances).
		Float64("accuracy", accuracy)
	if exp.Baseline != nil {
		l = l.Float64("baseline", *exp.Baseline)
	}
	l.Msg("experiment done")

	return exp, nil
}

// Load loads a stored report.
func Load(persistence storage.Persistence, k storage.Key) (*Report, error) {
	var report Report
	if err := persistence.Load(k, &report); err != nil {
		return nil, fmt.Errorf("could not load report '%s': %w", k.ID, err)
	}
	return &report, nil
}
