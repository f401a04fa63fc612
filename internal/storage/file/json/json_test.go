package json

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/free-bayes/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name     string    `json:"name"`
	Accuracy []float64 `json:"accuracy"`
}

func TestFileStorage_StoreAndLoad(t *testing.T) {
	root := t.TempDir()
	persistence, err := Shard(root)(storage.ReportDir)
	require.NoError(t, err)

	k := storage.Key{
		Dataset: "data/breast cancer.data",
		ID:      "123",
	}
	p := payload{
		Name:     "naive-bayes",
		Accuracy: []float64{0.9, 0.95},
	}

	err = persistence.Store(k, p)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, storage.ReportDir, "data-breast-cancer.data_123.json"))
	assert.NoError(t, err)

	var np payload
	err = persistence.Load(k, &np)
	require.NoError(t, err)
	assert.Equal(t, p, np)

	err = persistence.Load(storage.Key{Dataset: "other", ID: "1"}, &np)
	assert.True(t, errors.Is(err, storage.NotFoundErr))
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644))

	var p payload
	err := Load(dir, "bad.json", &p)
	assert.True(t, errors.Is(err, storage.CouldNotLoadErr))
}

func TestSave_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := Save(file, "x.json", payload{})
	assert.Error(t, err)
}
