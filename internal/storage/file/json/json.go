package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drakos74/free-bayes/internal/storage"
)

// Save saves the given json struct into the given path with the provided filename.
func Save(filePath string, fileName string, value interface{}) error {
	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}

	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal '%s': %w", fileName, err)
	}

	p := filepath.Join(filePath, fileName)
	if err := os.WriteFile(p, b, 0644); err != nil {
		return fmt.Errorf("could not write file '%s': %w", p, err)
	}

	return nil
}

// Load loads the payload from the given filePath and fileName.
func Load(filePath string, fileName string, value interface{}) error {

	p := filepath.Join(filePath, fileName)

	data, err := os.ReadFile(p)
	if err != nil {
		return fmt.Errorf("could not read file '%s' %s: %w", p, err.Error(), storage.NotFoundErr)
	}

	err = json.Unmarshal(data, value)
	if err != nil {
		return fmt.Errorf("could not unmarshal '%s' %s: %w", p, err.Error(), storage.CouldNotLoadErr)
	}

	return nil
}

// FileStorage stores values as json files under a root directory.
type FileStorage struct {
	path string
}

// NewJsonBlob creates a new file storage for the given shard.
func NewJsonBlob(root string, shard string) *FileStorage {
	return &FileStorage{
		path: filepath.Join(root, shard),
	}
}

// Shard creates file storages under the given root directory.
func Shard(root string) storage.Shard {
	return func(shard string) (storage.Persistence, error) {
		return NewJsonBlob(root, shard), nil
	}
}

// Path returns the directory of the storage.
func (fs *FileStorage) Path() string {
	return fs.path
}

func (fs *FileStorage) Store(k storage.Key, value interface{}) error {
	return Save(fs.path, k.Path(), value)
}

func (fs *FileStorage) Load(k storage.Key, value interface{}) error {
	return Load(fs.path, k.Path(), value)
}
