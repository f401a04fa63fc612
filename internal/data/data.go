// Package data loads delimited files into datasets.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/drakos74/free-bayes/internal/model"
)

// DefaultSeparator is the separator used when none is given.
const DefaultSeparator = ","

// Load reads a delimited stream into a dataset.
// Every row must have the same number of columns, with the id first and the class last.
// If header is set the first row is skipped.
func Load(r io.Reader, separator string, header bool) (model.Dataset, error) {
	if separator == "" {
		separator = DefaultSeparator
	}
	if separator == `\t` {
		separator = "\t"
	}
	sep, size := utf8.DecodeRuneInString(separator)
	if size != len(separator) {
		return nil, fmt.Errorf("separator must be a single character, got '%s': %w", separator, model.ConfigErr)
	}

	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	ds := make(model.Dataset, 0)
	width := -1
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if first && header {
			first = false
			continue
		}
		first = false
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		record, err := model.NewRecord(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if width < 0 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("line %d has %d columns, expected %d: %w", line, len(row), width, model.ShapeErr)
		}
		ds = append(ds, record)
	}
	return ds, nil
}

// LoadFile reads the dataset from the given file.
func LoadFile(path string, separator string, header bool) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset '%s': %w", path, err)
	}
	defer f.Close()
	ds, err := Load(f, separator, header)
	if err != nil {
		return nil, fmt.Errorf("could not load dataset '%s': %w", path, err)
	}
	return ds, nil
}
