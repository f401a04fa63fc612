package ml

import (
	"fmt"

	"github.com/drakos74/free-bayes/internal/model"
	randomforest "github.com/malaschitz/randomForest"
	"gonum.org/v1/gonum/floats"
)

// DefaultTrees is the default size of the baseline forest.
const DefaultTrees = 100

// RandomForest is a baseline classifier to compare the naive bayes results against.
// Attribute values are label encoded by their position in the training domain.
type RandomForest struct {
	trees   int
	width   int
	classes []string
	index   map[string]int
	domains []map[string]int
	forest  *randomforest.Forest
}

// NewForest creates a new forest baseline with n trees.
func NewForest(n int) *RandomForest {
	if n <= 0 {
		n = DefaultTrees
	}
	return &RandomForest{
		trees: n,
	}
}

// Fit trains the forest on the given training set.
func (rf *RandomForest) Fit(training model.Dataset) error {
	width, err := training.Width()
	if err != nil {
		return fmt.Errorf("could not fit forest on %d records: %w", len(training), err)
	}
	rf.width = width
	rf.classes = training.Classes()
	rf.index = make(map[string]int, len(rf.classes))
	for i, c := range rf.classes {
		rf.index[c] = i
	}
	rf.domains = make([]map[string]int, width)
	for a := range rf.domains {
		rf.domains[a] = make(map[string]int)
	}

	xData := make([][]float64, len(training))
	yData := make([]int, len(training))
	for i, r := range training {
		for a, v := range r.Attributes {
			if _, ok := rf.domains[a][v]; !ok {
				rf.domains[a][v] = len(rf.domains[a])
			}
		}
		xData[i] = rf.encode(r)
		yData[i] = rf.index[r.Class]
	}

	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: xData, Class: yData}
	forest.Train(rf.trees)
	rf.forest = forest
	return nil
}

func (rf *RandomForest) encode(r model.Record) []float64 {
	x := make([]float64, len(r.Attributes))
	for a, v := range r.Attributes {
		if i, ok := rf.domains[a][v]; ok {
			x[a] = float64(i)
		} else {
			x[a] = -1
		}
	}
	return x
}

// Classify returns the class with the most votes.
func (rf *RandomForest) Classify(r model.Record) (string, error) {
	if rf.forest == nil {
		return "", fmt.Errorf("forest has not been trained: %w", model.EmptyInputErr)
	}
	if r.Width() != rf.width {
		return "", fmt.Errorf("record '%s' has %d attributes, forest expects %d: %w",
			r.ID, r.Width(), rf.width, model.ShapeErr)
	}
	votes := rf.forest.Vote(rf.encode(r))
	if len(votes) == 0 {
		return rf.classes[0], nil
	}
	i := floats.MaxIdx(votes)
	if i >= len(rf.classes) {
		return rf.classes[0], nil
	}
	return rf.classes[i], nil
}

// Predict returns the accuracy of the forest on the test set.
func (rf *RandomForest) Predict(test model.Dataset) (float64, error) {
	if len(test) == 0 {
		return 0, fmt.Errorf("cannot score an empty test set: %w", model.EmptyInputErr)
	}
	hits := 0
	for i, r := range test {
		c, err := rf.Classify(r)
		if err != nil {
			return 0, fmt.Errorf("could not classify record %d: %w", i, err)
		}
		if c == r.Class {
			hits++
		}
	}
	return float64(hits) / float64(len(test)), nil
}
