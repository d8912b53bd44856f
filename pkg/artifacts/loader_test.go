package artifacts

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"github.com/Fe2Far/fiap-challenge4/pkg/testutil/fixtures"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingLoader(files fixtures.Files) (*Loader, map[string]int, *sync.Mutex) {
	l := NewLoader(Paths{
		Pipeline:     files.Pipeline,
		LabelEncoder: files.LabelEncoder,
		Dataset:      files.Dataset,
	})
	reads := make(map[string]int)
	mu := &sync.Mutex{}
	l.readFile = func(path string) ([]byte, error) {
		mu.Lock()
		reads[path]++
		mu.Unlock()
		return os.ReadFile(path)
	}
	return l, reads, mu
}

func TestGetModelsReadsStorageOnce(t *testing.T) {
	files := fixtures.WriteArtifacts(t, t.TempDir(), "CH2O", "TUE")
	l, reads, _ := newCountingLoader(files)

	p1, enc1, err := l.GetModels()
	require.NoError(t, err)
	p2, enc2, err := l.GetModels()
	require.NoError(t, err)

	assert.Same(t, enc1, enc2)
	assert.True(t, p1 == p2, "pipeline instance should be reused")
	assert.Equal(t, 1, reads[files.Pipeline])
	assert.Equal(t, 1, reads[files.LabelEncoder])
	assert.Equal(t, fixtures.Classes, enc1.Classes())
}

func TestGetDatasetReadsStorageOnce(t *testing.T) {
	files := fixtures.WriteArtifacts(t, t.TempDir(), "CH2O", "TUE")
	l, reads, _ := newCountingLoader(files)

	var wg sync.WaitGroup
	tables := make(chan interface{}, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := l.GetDataset()
			assert.NoError(t, err)
			tables <- table
		}()
	}
	wg.Wait()
	close(tables)

	first, _ := l.GetDataset()
	for table := range tables {
		assert.True(t, table == interface{}(first))
	}
	assert.Equal(t, 1, reads[files.Dataset])
	assert.Equal(t, 7, first.Len())
}

func TestMissingPipelineIsArtifactLoadError(t *testing.T) {
	dir := t.TempDir()
	files := fixtures.WriteArtifacts(t, dir, "CH2O", "TUE")
	require.NoError(t, os.Remove(files.Pipeline))

	l := NewLoader(Paths{Pipeline: files.Pipeline, LabelEncoder: files.LabelEncoder, Dataset: files.Dataset})
	err := l.Warm()

	var loadErr *ArtifactLoadError
	require.True(t, errors.As(err, &loadErr), "got %v", err)
	assert.Equal(t, "pipeline", loadErr.Artifact)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Failures are memoized.
	_, _, again := l.GetModels()
	assert.Same(t, err.(*ArtifactLoadError), again.(*ArtifactLoadError))
}

func TestCorruptEncoderIsArtifactLoadError(t *testing.T) {
	dir := t.TempDir()
	files := fixtures.WriteArtifacts(t, dir, "CH2O", "TUE")
	require.NoError(t, os.WriteFile(files.LabelEncoder, []byte(`{"classes":`), 0o644))

	_, _, err := NewLoader(Paths{Pipeline: files.Pipeline, LabelEncoder: files.LabelEncoder, Dataset: files.Dataset}).GetModels()
	assert.True(t, IsArtifactLoadError(err))
}

func TestDatasetMissingColumnsIsDataLoadError(t *testing.T) {
	dir := t.TempDir()
	files := fixtures.WriteArtifacts(t, dir, "CH2O", "TUE")
	path := filepath.Join(dir, "partial.csv")
	require.NoError(t, os.WriteFile(path, []byte("Age,Height\n20,1.7\n"), 0o644))

	_, err := NewLoader(Paths{Pipeline: files.Pipeline, LabelEncoder: files.LabelEncoder, Dataset: path}).GetDataset()
	assert.True(t, IsDataLoadError(err))
	assert.False(t, IsArtifactLoadError(err))
}

func TestPackageLevelAccessorsBeforeInit(t *testing.T) {
	if Default() != nil {
		t.Skip("default loader already configured")
	}
	_, _, err := GetModels()
	assert.True(t, IsArtifactLoadError(err))
	_, err = GetDataset()
	assert.True(t, IsDataLoadError(err))
}

func TestLoadLogsUnderArtifactsComponent(t *testing.T) {
	hook := test.NewLocal(logger.Log)
	defer hook.Reset()

	files := fixtures.WriteArtifacts(t, t.TempDir(), "CH2O", "TUE")
	require.NoError(t, NewLoader(Paths{
		Pipeline:     files.Pipeline,
		LabelEncoder: files.LabelEncoder,
		Dataset:      files.Dataset,
	}).Warm())

	var messages []string
	for _, entry := range hook.AllEntries() {
		if entry.Data["component"] == "artifacts" {
			messages = append(messages, entry.Message)
		}
	}
	assert.Contains(t, messages, "Pipeline loaded")
	assert.Contains(t, messages, "Label encoder loaded")
	assert.Contains(t, messages, "Reference dataset loaded")
}
