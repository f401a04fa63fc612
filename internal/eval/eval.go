// Package eval derives per class evaluation metrics from annotated predictions.
package eval

import (
	"math"
	"sort"

	"github.com/drakos74/free-bayes/internal/model"
	"github.com/sjwhitworth/golearn/evaluation"
)

// ClassStats are the evaluation metrics for a single class.
type ClassStats struct {
	Class     string  `json:"class"`
	Support   int     `json:"support"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Evaluation is the confusion matrix of a set of predictions and the metrics derived from it.
type Evaluation struct {
	Matrix   evaluation.ConfusionMatrix `json:"matrix"`
	Accuracy float64                    `json:"accuracy"`
	Classes  []ClassStats               `json:"classes"`
}

// Confusion builds the confusion matrix, keyed by actual and then predicted class.
func Confusion(predictions []model.Prediction) evaluation.ConfusionMatrix {
	cm := make(evaluation.ConfusionMatrix)
	for _, p := range predictions {
		if _, ok := cm[p.Class]; !ok {
			cm[p.Class] = make(map[string]int)
		}
		cm[p.Class][p.Predicted]++
	}
	// predicted classes need a row too, for the precision of classes absent from the test set
	for _, p := range predictions {
		if _, ok := cm[p.Predicted]; !ok {
			cm[p.Predicted] = make(map[string]int)
		}
	}
	return cm
}

// Evaluate computes the evaluation of the given predictions.
func Evaluate(predictions []model.Prediction) Evaluation {
	cm := Confusion(predictions)
	e := Evaluation{
		Matrix:  cm,
		Classes: make([]ClassStats, 0, len(cm)),
	}
	if len(predictions) == 0 {
		return e
	}
	e.Accuracy = evaluation.GetAccuracy(cm)

	classes := make([]string, 0, len(cm))
	for c := range cm {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	for _, c := range classes {
		support := 0
		for _, n := range cm[c] {
			support += n
		}
		e.Classes = append(e.Classes, ClassStats{
			Class:     c,
			Support:   support,
			Precision: orZero(evaluation.GetPrecision(c, cm)),
			Recall:    orZero(evaluation.GetRecall(c, cm)),
			F1:        orZero(evaluation.GetF1Score(c, cm)),
		})
	}
	return e
}

// Summary renders the golearn summary table of the confusion matrix.
func (e Evaluation) Summary() string {
	if len(e.Matrix) == 0 {
		return ""
	}
	return evaluation.GetSummary(e.Matrix)
}

// 0/0 ratios come back as NaN, which cannot be serialised.
func orZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
