package ml

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/drakos74/free-bayes/internal/model"
	"gonum.org/v1/gonum/floats"
)

// Key identifies a cell of the likelihood table.
type Key struct {
	Attribute int    `json:"attribute"`
	Value     string `json:"value"`
	Class     string `json:"class"`
}

// Row is a materialised row of the likelihood table.
type Row struct {
	Key
	Count      int     `json:"count"`
	Likelihood float64 `json:"likelihood"`
}

// NaiveBayes is a discrete attribute naive bayes model with laplace smoothing.
// A model is immutable once trained, and can be shared for read-only use.
type NaiveBayes struct {
	width int
	total int
	// classes keeps the order in which classes were first seen in training.
	classes    []string
	classTotal map[string]int
	domains    []map[string]struct{}
	counts     map[Key]int
}

// Train learns the frequency tables for the given training set.
func Train(training model.Dataset) (*NaiveBayes, error) {
	width, err := training.Width()
	if err != nil {
		return nil, fmt.Errorf("could not train on %d records: %w", len(training), err)
	}

	nb := &NaiveBayes{
		width:      width,
		total:      len(training),
		classes:    training.Classes(),
		classTotal: training.Count(),
		domains:    make([]map[string]struct{}, width),
		counts:     make(map[Key]int),
	}

	for a := range nb.domains {
		nb.domains[a] = make(map[string]struct{})
	}

	for _, r := range training {
		for a, v := range r.Attributes {
			nb.domains[a][v] = struct{}{}
			nb.counts[Key{Attribute: a, Value: v, Class: r.Class}]++
		}
	}

	return nb, nil
}

// Width is the number of attributes the model was trained on.
func (nb *NaiveBayes) Width() int {
	return nb.width
}

// Classes returns the classes in the order they were first seen during training.
// This is also the tie-break order for predictions.
func (nb *NaiveBayes) Classes() []string {
	classes := make([]string, len(nb.classes))
	copy(classes, nb.classes)
	return classes
}

// Prior is the relative frequency of the class in the training set.
func (nb *NaiveBayes) Prior(class string) float64 {
	return float64(nb.classTotal[class]) / float64(nb.total)
}

// Priors returns the prior of every class.
func (nb *NaiveBayes) Priors() map[string]float64 {
	priors := make(map[string]float64, len(nb.classes))
	for _, c := range nb.classes {
		priors[c] = nb.Prior(c)
	}
	return priors
}

// Count returns the number of training records with the given class and attribute value.
func (nb *NaiveBayes) Count(attribute int, value string, class string) int {
	return nb.counts[Key{Attribute: attribute, Value: value, Class: class}]
}

// Domain returns the sorted distinct values seen for the attribute during training.
func (nb *NaiveBayes) Domain(attribute int) []string {
	if attribute < 0 || attribute >= nb.width {
		return nil
	}
	values := make([]string, 0, len(nb.domains[attribute]))
	for v := range nb.domains[attribute] {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Likelihood is the smoothed estimate of P(attribute = value | class).
//
//	(count + 1) / (class total + |domain of attribute|)
//
// Values never seen for the attribute get a zero count against the same denominator,
// so the result is always strictly positive.
func (nb *NaiveBayes) Likelihood(attribute int, value string, class string) float64 {
	count := nb.Count(attribute, value, class)
	return float64(count+1) / float64(nb.classTotal[class]+len(nb.domains[attribute]))
}

// Table returns the likelihood table ordered by attribute, value and class order.
func (nb *NaiveBayes) Table() []Row {
	rows := make([]Row, 0)
	for a := 0; a < nb.width; a++ {
		for _, v := range nb.Domain(a) {
			for _, c := range nb.classes {
				rows = append(rows, Row{
					Key:        Key{Attribute: a, Value: v, Class: c},
					Count:      nb.Count(a, v, c),
					Likelihood: nb.Likelihood(a, v, c),
				})
			}
		}
	}
	return rows
}

// Scores returns the log posterior score of every class, in class order.
// The score is log(prior) plus the sum of the log likelihoods.
func (nb *NaiveBayes) Scores(r model.Record) ([]float64, error) {
	if r.Width() != nb.width {
		return nil, fmt.Errorf("record '%s' has %d attributes, model expects %d: %w",
			r.ID, r.Width(), nb.width, model.ShapeErr)
	}
	scores := make([]float64, len(nb.classes))
	for i, c := range nb.classes {
		score := math.Log(nb.Prior(c))
		for a, v := range r.Attributes {
			score += math.Log(nb.Likelihood(a, v, c))
		}
		scores[i] = score
	}
	return scores, nil
}

// Posterior returns the normalised posterior probability of every class.
func (nb *NaiveBayes) Posterior(r model.Record) (map[string]float64, error) {
	scores, err := nb.Scores(r)
	if err != nil {
		return nil, err
	}
	norm := floats.LogSumExp(scores)
	posterior := make(map[string]float64, len(scores))
	for i, c := range nb.classes {
		posterior[c] = math.Exp(scores[i] - norm)
	}
	return posterior, nil
}

// Exact returns the posterior score of every class as an exact rational, in class order.
//
//	class total / total * Π (count + 1) / (class total + |domain|)
func (nb *NaiveBayes) Exact(r model.Record) ([]*big.Rat, error) {
	if r.Width() != nb.width {
		return nil, fmt.Errorf("record '%s' has %d attributes, model expects %d: %w",
			r.ID, r.Width(), nb.width, model.ShapeErr)
	}
	scores := make([]*big.Rat, len(nb.classes))
	for i, c := range nb.classes {
		score := big.NewRat(int64(nb.classTotal[c]), int64(nb.total))
		for a, v := range r.Attributes {
			score.Mul(score, big.NewRat(
				int64(nb.Count(a, v, c)+1),
				int64(nb.classTotal[c]+len(nb.domains[a]))))
		}
		scores[i] = score
	}
	return scores, nil
}

// Classify returns the class with the highest posterior score.
// Scores are compared exactly, and ties go to the class seen first during training.
func (nb *NaiveBayes) Classify(r model.Record) (string, error) {
	scores, err := nb.Exact(r)
	if err != nil {
		return "", err
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Cmp(scores[best]) > 0 {
			best = i
		}
	}
	return nb.classes[best], nil
}

// Predict classifies every test record.
// It returns the share of correct predictions, the annotated records and the number of test instances.
// The test set is not modified.
func (nb *NaiveBayes) Predict(test model.Dataset) (accuracy float64, predictions []model.Prediction, instances int, err error) {
	if len(test) == 0 {
		return 0, nil, 0, fmt.Errorf("cannot score an empty test set: %w", model.EmptyInputErr)
	}
	predictions = make([]model.Prediction, len(test))
	hits := 0
	for i, r := range test {
		c, err := nb.Classify(r)
		if err != nil {
			return 0, nil, 0, fmt.Errorf("could not classify record %d: %w", i, err)
		}
		posterior, err := nb.Posterior(r)
		if err != nil {
			return 0, nil, 0, fmt.Errorf("could not score record %d: %w", i, err)
		}
		predictions[i] = model.NewPrediction(r, c)
		predictions[i].Posterior = posterior[c]
		hits += predictions[i].Hit()
	}
	instances = len(test)
	accuracy = float64(hits) / float64(instances)
	return accuracy, predictions, instances, nil
}
