// Package report renders cross validation reports as text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/drakos74/free-bayes/internal/experiment"
	coinmath "github.com/drakos74/free-bayes/internal/math"
	"github.com/olekukonko/tablewriter"
)

const line = "----------------------------------------------------------"

// Trace writes the detailed outcome of every experiment.
func Trace(w io.Writer, r *experiment.Report) error {
	bw := bufio.NewWriter(w)
	for _, exp := range r.Experiments {
		fmt.Fprintf(bw, "Running Experiment %d ...\n\n", exp.Index+1)
		fmt.Fprintf(bw, "Accuracy: %s\n\n", coinmath.Percent(exp.Accuracy))

		fmt.Fprintln(bw, "Classifications:")
		classifications(bw, exp)
		fmt.Fprintln(bw)

		fmt.Fprintln(bw, "Learned Model (Priors):")
		priors(bw, exp)
		fmt.Fprintln(bw)

		fmt.Fprintln(bw, "Learned Model (Likelihood Table):")
		likelihoods(bw, exp)
		fmt.Fprintln(bw)

		if exp.Baseline != nil {
			fmt.Fprintf(bw, "Baseline Accuracy: %s\n\n", coinmath.Percent(*exp.Baseline))
		}

		fmt.Fprintf(bw, "Number of Test Instances: %d\n\n", exp.Instances)
	}
	fmt.Fprintln(bw, "Experiments Completed.")
	return bw.Flush()
}

func classifications(w io.Writer, exp experiment.Experiment) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	width := 0
	if len(exp.Predictions) > 0 {
		width = exp.Predictions[0].Width()
	}
	header := []string{"ID"}
	for a := 0; a < width; a++ {
		header = append(header, fmt.Sprintf("A%d", a+1))
	}
	header = append(header, "Actual Class", "Predicted Class", "Prediction Correct?", "Posterior")
	table.SetHeader(header)
	for _, p := range exp.Predictions {
		row := []string{p.ID}
		row = append(row, p.Attributes...)
		row = append(row, p.Class, p.Predicted, p.Label(), strconv.FormatFloat(p.Posterior, 'f', 4, 64))
		table.Append(row)
	}
	table.Render()
}

func priors(w io.Writer, exp experiment.Experiment) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Class", "Prior"})
	for _, c := range exp.Classes {
		table.Append([]string{c, strconv.FormatFloat(exp.Priors[c], 'f', 4, 64)})
	}
	table.Render()
}

func likelihoods(w io.Writer, exp experiment.Experiment) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Attribute", "Value", "Class", "Count", "Likelihood"})
	for _, row := range exp.Likelihoods {
		table.Append([]string{
			fmt.Sprintf("A%d", row.Attribute+1),
			row.Value,
			row.Class,
			strconv.Itoa(row.Count),
			strconv.FormatFloat(row.Likelihood, 'f', 4, 64),
		})
	}
	table.Render()
}

// Summary writes the summary statistics of the run.
func Summary(w io.Writer, r *experiment.Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, line)
	fmt.Fprintf(bw, "%s Summary Statistics\n", r.Algorithm)
	fmt.Fprintln(bw, line)
	fmt.Fprintf(bw, "Report : %s\n", r.ID)
	fmt.Fprintf(bw, "Data Set : %s\n", r.Dataset)
	fmt.Fprintf(bw, "Instances : %d\n\n", r.Instances)

	accuracy := make([]string, len(r.Accuracy))
	for i, a := range r.Accuracy {
		accuracy[i] = coinmath.Format(a)
	}
	fmt.Fprintf(bw, "Accuracy Statistics for All %d Experiments: [%s]\n\n", r.Folds, strings.Join(accuracy, ","))

	fmt.Fprintf(bw, "Classification Accuracy : %s\n", coinmath.Percent(r.Summary.Mean))
	fmt.Fprintf(bw, "Standard Deviation : %s\n", coinmath.Percent(r.Summary.StDev))
	fmt.Fprintf(bw, "Range : %s - %s\n", coinmath.Percent(r.Summary.Min), coinmath.Percent(r.Summary.Max))
	if r.Baseline != nil {
		fmt.Fprintf(bw, "Baseline Accuracy (Random Forest) : %s\n", coinmath.Percent(r.Baseline.Mean))
	}
	fmt.Fprintln(bw)

	table := tablewriter.NewWriter(bw)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Class", "Support", "Precision", "Recall", "F1"})
	for _, c := range r.Evaluation.Classes {
		table.Append([]string{
			c.Class,
			strconv.Itoa(c.Support),
			coinmath.Format(c.Precision),
			coinmath.Format(c.Recall),
			coinmath.Format(c.F1),
		})
	}
	table.Render()
	return bw.Flush()
}
