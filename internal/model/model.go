package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ConfigErr marks an invalid setup, e.g. a bad fold count or an empty dataset.
	ConfigErr = errors.New("invalid configuration")
	// ShapeErr marks a record that does not have the expected columns.
	ShapeErr = errors.New("invalid record shape")
	// EmptyInputErr marks an operation that was given no records to work on.
	EmptyInputErr = errors.New("empty input")
)

// MinColumns is the minimum width of a row : id, one attribute and the class.
const MinColumns = 3

// Record is a single labeled instance.
// All attribute values and the class are treated as discrete symbols.
type Record struct {
	ID         string   `json:"id"`
	Attributes []string `json:"attributes"`
	Class      string   `json:"class"`
}

// NewRecord parses a raw row into a record.
// Column 0 is the instance id, the last column is the class label and everything in between is an attribute.
func NewRecord(row []string) (Record, error) {
	if len(row) < MinColumns {
		return Record{}, fmt.Errorf("row '%s' has %d columns, need at least %d: %w",
			strings.Join(row, ","), len(row), MinColumns, ShapeErr)
	}
	attributes := make([]string, len(row)-2)
	copy(attributes, row[1:len(row)-1])
	return Record{
		ID:         row[0],
		Attributes: attributes,
		Class:      row[len(row)-1],
	}, nil
}

// Width returns the number of attributes of the record.
func (r Record) Width() int {
	return len(r.Attributes)
}

// Clone returns a copy of the record that shares no memory with it.
func (r Record) Clone() Record {
	attributes := make([]string, len(r.Attributes))
	copy(attributes, r.Attributes)
	r.Attributes = attributes
	return r
}

// Row returns the record as a raw row, the inverse of NewRecord.
func (r Record) Row() []string {
	row := make([]string, 0, len(r.Attributes)+2)
	row = append(row, r.ID)
	row = append(row, r.Attributes...)
	return append(row, r.Class)
}

// Dataset is an ordered sequence of records.
type Dataset []Record

// Width returns the common attribute count of the dataset.
// It fails if the dataset is empty or if any record does not match the width of the first one.
func (ds Dataset) Width() (int, error) {
	if len(ds) == 0 {
		return 0, fmt.Errorf("no records: %w", EmptyInputErr)
	}
	w := ds[0].Width()
	if w < 1 {
		return 0, fmt.Errorf("record '%s' has no attributes: %w", ds[0].ID, ShapeErr)
	}
	for i, r := range ds {
		if r.Width() != w {
			return 0, fmt.Errorf("record %d ('%s') has %d attributes, expected %d: %w",
				i, r.ID, r.Width(), w, ShapeErr)
		}
	}
	return w, nil
}

// Classes returns the distinct class labels in order of first appearance.
func (ds Dataset) Classes() []string {
	seen := make(map[string]struct{})
	classes := make([]string, 0)
	for _, r := range ds {
		if _, ok := seen[r.Class]; !ok {
			seen[r.Class] = struct{}{}
			classes = append(classes, r.Class)
		}
	}
	return classes
}

// Count returns the number of records per class.
func (ds Dataset) Count() map[string]int {
	count := make(map[string]int)
	for _, r := range ds {
		count[r.Class]++
	}
	return count
}

// Fold is a sub-sequence of a dataset produced by the splitter.
// Folds are never modified once created.
type Fold Dataset

// Prediction is a record annotated with the predicted class.
type Prediction struct {
	Record
	Predicted string `json:"predicted"`
	Correct   bool   `json:"correct"`
	// Posterior is the normalised probability of the predicted class, when known.
	Posterior float64 `json:"posterior,omitempty"`
}

// NewPrediction creates a prediction for the given record.
func NewPrediction(r Record, predicted string) Prediction {
	return Prediction{
		Record:    r,
		Predicted: predicted,
		Correct:   r.Class == predicted,
	}
}

// Hit returns the numeric form of the correct flag.
func (p Prediction) Hit() int {
	if p.Correct {
		return 1
	}
	return 0
}

// Label returns the display form of the correct flag.
func (p Prediction) Label() string {
	if p.Correct {
		return "Yes"
	}
	return "No"
}
