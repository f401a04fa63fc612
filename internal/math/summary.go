package math

import (
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the aggregate statistics of a set of accuracy values.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	StDev float64 `json:"stdev"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summarize computes the summary of the given values.
// The standard deviation is the unbiased sample one and is zero for less than two values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StDev = stat.MeanStdDev(values, nil)
	return s
}

// Format formats a float based on the given precision
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Percent formats a ratio as a percentage.
func Percent(f float64) string {
	return Format(f*100) + "%"
}
