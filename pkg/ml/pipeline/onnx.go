package pipeline

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortOnce sync.Once
	ortErr  error
)

// initRuntime loads the ONNX Runtime shared library once per process.
func initRuntime(libraryPath string) error {
	ortOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if !ort.IsInitialized() {
			ortErr = ort.InitializeEnvironment()
		}
	})
	return ortErr
}

// onnxClassifier runs a classifier exported with zipmap disabled: a float32
// input of shape [1, width], an int64 label and a float32 probability matrix.
type onnxClassifier struct {
	session     *ort.DynamicAdvancedSession
	width       int
	classes     int
	inputName   string
	outputNames []string
}

func newONNXClassifier(spec ClassifierSpec, width int, opts Options) (*onnxClassifier, error) {
	if spec.ModelPath == "" {
		return nil, fmt.Errorf("onnx classifier: model_path is required")
	}
	if spec.NumClasses <= 0 {
		return nil, fmt.Errorf("onnx classifier: n_classes is required")
	}
	if err := initRuntime(opts.ONNXLibraryPath); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	modelPath := spec.ModelPath
	if !filepath.IsAbs(modelPath) && opts.BaseDir != "" {
		modelPath = filepath.Join(opts.BaseDir, modelPath)
	}

	input := valueOr(spec.InputName, "float_input")
	outputs := []string{
		valueOr(spec.LabelOutput, "output_label"),
		valueOr(spec.ProbabilityOutput, "output_probability"),
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{input}, outputs, options)
	if err != nil {
		return nil, fmt.Errorf("load onnx model %s: %w", filepath.Base(modelPath), err)
	}

	return &onnxClassifier{
		session:     session,
		width:       width,
		classes:     spec.NumClasses,
		inputName:   input,
		outputNames: outputs,
	}, nil
}

func (o *onnxClassifier) predict(x []float64) (int, []float64, error) {
	if o.session == nil {
		return 0, nil, fmt.Errorf("onnx session is closed")
	}

	input := make([]float32, len(x))
	for i, v := range x {
		input[i] = float32(v)
	}
	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(o.width)), input)
	if err != nil {
		return 0, nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	labelOut := make([]int64, 1)
	labelTensor, err := ort.NewTensor(ort.NewShape(1), labelOut)
	if err != nil {
		return 0, nil, fmt.Errorf("create label tensor: %w", err)
	}
	defer labelTensor.Destroy()

	probOut := make([]float32, o.classes)
	probTensor, err := ort.NewTensor(ort.NewShape(1, int64(o.classes)), probOut)
	if err != nil {
		return 0, nil, fmt.Errorf("create probability tensor: %w", err)
	}
	defer probTensor.Destroy()

	if err := o.session.Run([]ort.Value{inputTensor}, []ort.Value{labelTensor, probTensor}); err != nil {
		return 0, nil, fmt.Errorf("onnx inference: %w", err)
	}

	probs := make([]float64, o.classes)
	for i, p := range probTensor.GetData() {
		probs[i] = float64(p)
	}
	return int(labelTensor.GetData()[0]), probs, nil
}

func (o *onnxClassifier) close() error {
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	return err
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
