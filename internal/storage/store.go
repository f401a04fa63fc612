package storage

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ReportDir = "reports"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

// Key is the storage key of an experiment report.
type Key struct {
	Dataset string `json:"dataset"`
	ID      string `json:"id"`
}

// Path returns the file name for the key.
func (k Key) Path() string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, k.Dataset)
	return fmt.Sprintf("%s_%s.json", name, k.ID)
}

// Persistence stores and loads values by key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}
