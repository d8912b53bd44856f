// Package artifacts loads the trained pipeline, its label encoder and the
// reference dataset once per process and hands out the cached values.
package artifacts

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/config"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"github.com/Fe2Far/fiap-challenge4/pkg/dataset"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/labels"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/pipeline"
	"github.com/Fe2Far/fiap-challenge4/pkg/observability/metrics"
	"github.com/dustin/go-humanize"
)

// ArtifactLoadError means the pipeline or label encoder could not be read or
// deserialized. The service cannot run without them.
type ArtifactLoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact from %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

// DataLoadError means the reference dataset is missing or malformed.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load dataset from %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

type Paths struct {
	Pipeline        string
	LabelEncoder    string
	Dataset         string
	ONNXLibraryPath string
}

func PathsFromConfig(cfg *config.Config) Paths {
	return Paths{
		Pipeline:        cfg.PipelinePath,
		LabelEncoder:    cfg.LabelEncoderPath,
		Dataset:         cfg.DatasetPath,
		ONNXLibraryPath: cfg.ONNXLibraryPath,
	}
}

// Loader memoizes both the successful result and the failure of each load;
// there are no retries.
type Loader struct {
	paths Paths

	readFile func(path string) ([]byte, error)

	modelsOnce sync.Once
	pipeline   pipeline.Pipeline
	encoder    *labels.Encoder
	modelsErr  error

	datasetOnce sync.Once
	table       *dataset.Table
	datasetErr  error
}

func NewLoader(paths Paths) *Loader {
	return &Loader{
		paths:    paths,
		readFile: os.ReadFile,
	}
}

// GetModels returns the pipeline and encoder, reading storage only on the
// first call.
func (l *Loader) GetModels() (pipeline.Pipeline, *labels.Encoder, error) {
	l.modelsOnce.Do(func() {
		l.pipeline, l.encoder, l.modelsErr = l.loadModels()
	})
	return l.pipeline, l.encoder, l.modelsErr
}

func (l *Loader) loadModels() (pipeline.Pipeline, *labels.Encoder, error) {
	start := time.Now()
	raw, err := l.readFile(l.paths.Pipeline)
	if err != nil {
		return nil, nil, &ArtifactLoadError{Artifact: "pipeline", Path: l.paths.Pipeline, Err: err}
	}
	p, err := pipeline.Decode(raw, pipeline.Options{
		BaseDir:         filepath.Dir(l.paths.Pipeline),
		ONNXLibraryPath: l.paths.ONNXLibraryPath,
	})
	if err != nil {
		return nil, nil, &ArtifactLoadError{Artifact: "pipeline", Path: l.paths.Pipeline, Err: err}
	}
	metrics.ObserveArtifact("pipeline", time.Since(start))
	logger.Component("artifacts").WithFields(map[string]interface{}{
		"path":     l.paths.Pipeline,
		"size":     humanize.Bytes(uint64(len(raw))),
		"features": len(p.FeatureNames()),
		"pipeline": fmt.Sprint(p),
	}).Info("Pipeline loaded")

	start = time.Now()
	raw, err = l.readFile(l.paths.LabelEncoder)
	if err != nil {
		return nil, nil, &ArtifactLoadError{Artifact: "label encoder", Path: l.paths.LabelEncoder, Err: err}
	}
	enc, err := labels.Decode(raw)
	if err != nil {
		return nil, nil, &ArtifactLoadError{Artifact: "label encoder", Path: l.paths.LabelEncoder, Err: err}
	}
	metrics.ObserveArtifact("label_encoder", time.Since(start))
	logger.Component("artifacts").WithFields(map[string]interface{}{
		"path":    l.paths.LabelEncoder,
		"classes": enc.Len(),
	}).Info("Label encoder loaded")

	return p, enc, nil
}

// GetDataset returns the reference table, parsing it only on the first call.
func (l *Loader) GetDataset() (*dataset.Table, error) {
	l.datasetOnce.Do(func() {
		l.table, l.datasetErr = l.loadDataset()
	})
	return l.table, l.datasetErr
}

func (l *Loader) loadDataset() (*dataset.Table, error) {
	start := time.Now()
	raw, err := l.readFile(l.paths.Dataset)
	if err != nil {
		return nil, &DataLoadError{Path: l.paths.Dataset, Err: err}
	}

	table, err := dataset.Parse(bytes.NewReader(raw), dataset.DelimiterFor(l.paths.Dataset))
	if err != nil {
		return nil, &DataLoadError{Path: l.paths.Dataset, Err: err}
	}
	if err := table.Validate(dataset.RequiredColumns); err != nil {
		return nil, &DataLoadError{Path: l.paths.Dataset, Err: err}
	}

	metrics.ObserveArtifact("dataset", time.Since(start))
	metrics.DatasetRows.Set(float64(table.Len()))
	logger.Component("artifacts").WithFields(map[string]interface{}{
		"path":    l.paths.Dataset,
		"size":    humanize.Bytes(uint64(len(raw))),
		"rows":    humanize.Comma(int64(table.Len())),
		"columns": len(table.Columns()),
	}).Info("Reference dataset loaded")
	return table, nil
}

// Warm loads everything eagerly so failures surface before serving.
func (l *Loader) Warm() error {
	if _, _, err := l.GetModels(); err != nil {
		return err
	}
	_, err := l.GetDataset()
	return err
}

// Close releases native resources held by the pipeline, if any.
func (l *Loader) Close() error {
	if c, ok := l.pipeline.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var (
	defaultLoader *Loader
	defaultMu     sync.Mutex
)

// Init configures the process-wide loader. Only the first call has effect.
func Init(cfg *config.Config) *Loader {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoader == nil {
		defaultLoader = NewLoader(PathsFromConfig(cfg))
	}
	return defaultLoader
}

// Default returns the loader configured by Init, or nil before Init.
func Default() *Loader {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLoader
}

func GetModels() (pipeline.Pipeline, *labels.Encoder, error) {
	l := Default()
	if l == nil {
		return nil, nil, &ArtifactLoadError{Artifact: "pipeline", Err: errNotInitialized}
	}
	return l.GetModels()
}

func GetDataset() (*dataset.Table, error) {
	l := Default()
	if l == nil {
		return nil, &DataLoadError{Err: errNotInitialized}
	}
	return l.GetDataset()
}
