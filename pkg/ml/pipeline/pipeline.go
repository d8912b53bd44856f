// Package pipeline loads the serialized preprocessing + classifier pipeline
// and runs single-row predictions against it.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Fe2Far/fiap-challenge4/pkg/features"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/linear"
)

// Pipeline is the only capability the service relies on: a named-column
// row in, an integer class code out.
type Pipeline interface {
	Predict(row features.Row) (int, error)
	FeatureNames() []string
}

// ProbabilityPredictor is implemented by pipelines that also expose the
// class distribution. Code and probabilities come from the same run.
type ProbabilityPredictor interface {
	PredictWithProba(row features.Row) (int, []float64, error)
}

const (
	ClassifierLogistic = "logistic"
	ClassifierONNX     = "onnx"
)

// Artifact is the on-disk representation of a trained pipeline.
type Artifact struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	FeatureNames []string       `json:"feature_names"`
	Preprocessor Preprocessor   `json:"preprocessor"`
	Classifier   ClassifierSpec `json:"classifier"`
}

type ClassifierSpec struct {
	Type string `json:"type"`

	// logistic
	Intercepts   []float64   `json:"intercepts,omitempty"`
	Coefficients [][]float64 `json:"coefficients,omitempty"`

	// onnx
	ModelPath         string `json:"model_path,omitempty"`
	InputName         string `json:"input_name,omitempty"`
	LabelOutput       string `json:"label_output,omitempty"`
	ProbabilityOutput string `json:"probability_output,omitempty"`
	NumClasses        int    `json:"n_classes,omitempty"`
}

// SchemaError is returned when a row's columns differ from the training
// schema. Predicting on a mis-named column would silently shift features.
type SchemaError struct {
	Missing    []string
	Unexpected []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing features "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected features "+strings.Join(e.Unexpected, ", "))
	}
	return "feature schema mismatch: " + strings.Join(parts, "; ")
}

type Options struct {
	// BaseDir resolves relative model paths inside the artifact.
	BaseDir         string
	ONNXLibraryPath string
}

type classifier interface {
	predict(x []float64) (int, []float64, error)
	close() error
}

type composed struct {
	name         string
	version      string
	featureNames []string
	pre          Preprocessor
	clf          classifier
}

// Decode parses and validates an artifact and builds the runnable pipeline.
func Decode(data []byte, opts Options) (Pipeline, error) {
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode pipeline artifact: %w", err)
	}
	return Build(artifact, opts)
}

func Build(artifact Artifact, opts Options) (Pipeline, error) {
	if len(artifact.FeatureNames) == 0 {
		return nil, errors.New("artifact missing feature names")
	}
	if err := artifact.Preprocessor.validate(artifact.FeatureNames); err != nil {
		return nil, err
	}

	width := artifact.Preprocessor.Width()
	var clf classifier
	switch artifact.Classifier.Type {
	case ClassifierLogistic, "":
		weights := linear.Weights{
			Intercepts:   artifact.Classifier.Intercepts,
			Coefficients: artifact.Classifier.Coefficients,
		}
		if err := weights.Validate(width); err != nil {
			return nil, fmt.Errorf("logistic classifier: %w", err)
		}
		clf = logistic{weights: weights}
	case ClassifierONNX:
		onnx, err := newONNXClassifier(artifact.Classifier, width, opts)
		if err != nil {
			return nil, err
		}
		clf = onnx
	default:
		return nil, fmt.Errorf("unsupported classifier type %q", artifact.Classifier.Type)
	}

	names := make([]string, len(artifact.FeatureNames))
	copy(names, artifact.FeatureNames)
	return &composed{
		name:         artifact.Name,
		version:      artifact.Version,
		featureNames: names,
		pre:          artifact.Preprocessor,
		clf:          clf,
	}, nil
}

func (c *composed) FeatureNames() []string {
	out := make([]string, len(c.featureNames))
	copy(out, c.featureNames)
	return out
}

func (c *composed) Predict(row features.Row) (int, error) {
	code, _, err := c.run(row)
	return code, err
}

func (c *composed) PredictWithProba(row features.Row) (int, []float64, error) {
	return c.run(row)
}

func (c *composed) run(row features.Row) (int, []float64, error) {
	if err := c.checkSchema(row); err != nil {
		return 0, nil, err
	}
	x, err := c.pre.Transform(row)
	if err != nil {
		return 0, nil, err
	}
	return c.clf.predict(x)
}

func (c *composed) checkSchema(row features.Row) error {
	expected := make(map[string]bool, len(c.featureNames))
	var missing []string
	for _, name := range c.featureNames {
		expected[name] = true
		if !row.Has(name) {
			missing = append(missing, name)
		}
	}
	var unexpected []string
	for _, name := range row.Columns() {
		if !expected[name] {
			unexpected = append(unexpected, name)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}
	sort.Strings(unexpected)
	return &SchemaError{Missing: missing, Unexpected: unexpected}
}

// Close releases native classifier resources.
func (c *composed) Close() error {
	return c.clf.close()
}

func (c *composed) String() string {
	return fmt.Sprintf("%s@%s", c.name, c.version)
}

type logistic struct {
	weights linear.Weights
}

func (l logistic) predict(x []float64) (int, []float64, error) {
	code, probs := linear.Predict(l.weights, x)
	return code, probs, nil
}

func (logistic) close() error { return nil }
