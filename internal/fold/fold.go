// Package fold builds stratified folds for cross validation.
package fold

import (
	"fmt"

	"github.com/drakos74/free-bayes/internal/model"
)

// K is the default number of folds.
const K = 5

// Stratified partitions the dataset into k disjoint folds that preserve the class distribution.
//
// Records are grouped by class, in order of first appearance, keeping their relative order within
// each group. The groups are then dealt round-robin over the folds. The dealing position carries over
// from one class group to the next, so that for every class the count in any two folds differs by at
// most one and the fold sizes themselves differ by at most one.
// Classes with fewer than k records leave some folds without that class.
func Stratified(ds model.Dataset, k int) ([]model.Fold, error) {
	if k <= 1 {
		return nil, fmt.Errorf("need at least 2 folds, got %d: %w", k, model.ConfigErr)
	}
	if len(ds) == 0 {
		return nil, fmt.Errorf("cannot split empty dataset: %w", model.ConfigErr)
	}

	classes := ds.Classes()
	groups := make(map[string][]model.Record, len(classes))
	for _, r := range ds {
		groups[r.Class] = append(groups[r.Class], r)
	}

	folds := make([]model.Fold, k)
	for i := range folds {
		folds[i] = make(model.Fold, 0, len(ds)/k+1)
	}

	next := 0
	for _, c := range classes {
		for _, r := range groups[c] {
			folds[next] = append(folds[next], r)
			next = (next + 1) % k
		}
	}

	return folds, nil
}

// Rotate assembles the i-th cross validation experiment.
// Fold i is the test set and the remaining folds, in order, make up the training set.
// The returned records are deep copies, so the folds stay untouched whatever the caller does with them.
func Rotate(folds []model.Fold, i int) (training model.Dataset, test model.Dataset, err error) {
	if i < 0 || i >= len(folds) {
		return nil, nil, fmt.Errorf("fold index %d out of range [0,%d): %w", i, len(folds), model.ConfigErr)
	}
	size := 0
	for j, f := range folds {
		if j != i {
			size += len(f)
		}
	}
	training = make(model.Dataset, 0, size)
	for j, f := range folds {
		if j != i {
			for _, r := range f {
				training = append(training, r.Clone())
			}
		}
	}
	test = make(model.Dataset, len(folds[i]))
	for j, r := range folds[i] {
		test[j] = r.Clone()
	}
	return training, test, nil
}
