// Package serving runs the trained pipeline on an assembled feature row and
// decodes the result into a human-readable label.
package serving

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
	"github.com/Fe2Far/fiap-challenge4/pkg/features"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/labels"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/pipeline"
	"github.com/Fe2Far/fiap-challenge4/pkg/observability/metrics"
	"github.com/Fe2Far/fiap-challenge4/pkg/observability/tracking"
	"github.com/google/uuid"
)

// PredictionError wraps any failure inside the pipeline or the label decode.
// It never escapes as a panic.
type PredictionError struct {
	Stage string // predict | decode
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed during %s: %v", e.Stage, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

func IsPredictionError(err error) bool {
	var pe *PredictionError
	return errors.As(err, &pe)
}

// Recorder persists completed diagnoses.
type Recorder interface {
	RecordDiagnosis(ctx context.Context, features map[string]interface{}, result models.DiagnosisResult) error
}

// Publisher emits diagnosis events.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error
}

const (
	eventSource    = "diagnosis-service"
	publishTimeout = 2 * time.Second
)

type Option func(*Invoker)

func WithRecorder(r Recorder) Option {
	return func(inv *Invoker) { inv.recorder = r }
}

func WithPublisher(p Publisher) Option {
	return func(inv *Invoker) { inv.publisher = p }
}

type Invoker struct {
	pipeline  pipeline.Pipeline
	encoder   *labels.Encoder
	recorder  Recorder
	publisher Publisher
	now       func() time.Time
}

func NewInvoker(p pipeline.Pipeline, enc *labels.Encoder, opts ...Option) *Invoker {
	inv := &Invoker{pipeline: p, encoder: enc, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(inv)
		}
	}
	return inv
}

// Classes is the encoder's class order.
func (inv *Invoker) Classes() []string {
	return inv.encoder.Classes()
}

// Diagnose predicts the class code of row and decodes it. Audit and event
// failures are logged and do not affect the result.
func (inv *Invoker) Diagnose(ctx context.Context, row features.Row) (models.DiagnosisResult, error) {
	start := inv.now()

	code, probs, err := inv.predict(row)
	if err != nil {
		return inv.fail(ctx, start, &PredictionError{Stage: "predict", Err: err})
	}
	label, err := inv.encoder.InverseTransform(code)
	if err != nil {
		return inv.fail(ctx, start, &PredictionError{Stage: "decode", Err: err})
	}

	imc, _ := row.Float(features.ColumnIMC)
	took := inv.now().Sub(start)
	result := models.DiagnosisResult{
		ID:        uuid.New().String(),
		Label:     label,
		Code:      code,
		IMC:       imc,
		Latency:   took,
		LatencyMs: milliseconds(took),
		CreatedAt: start.UTC(),
	}
	if len(probs) == inv.encoder.Len() {
		result.Probabilities = make(map[string]float64, len(probs))
		for i, class := range inv.encoder.Classes() {
			result.Probabilities[class] = probs[i]
		}
	}

	metrics.ObservePrediction(label, result.Latency, nil)
	logger.Log.WithFields(map[string]interface{}{
		"diagnosis_id": result.ID,
		"label":        label,
		"imc":          fmt.Sprintf("%.2f", imc),
		"latency_ms":   result.LatencyMs,
	}).Info("Diagnosis completed")

	inv.audit(ctx, row, result)
	return result, nil
}

func (inv *Invoker) predict(row features.Row) (code int, probs []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	if pp, ok := inv.pipeline.(pipeline.ProbabilityPredictor); ok {
		return pp.PredictWithProba(row)
	}
	code, err = inv.pipeline.Predict(row)
	return code, nil, err
}

func (inv *Invoker) fail(ctx context.Context, start time.Time, err *PredictionError) (models.DiagnosisResult, error) {
	metrics.ObservePrediction("", inv.now().Sub(start), err)
	logger.Log.WithError(err).WithField("stage", err.Stage).Error("Diagnosis failed")
	tracking.CaptureError(ctx, err, map[string]string{"stage": err.Stage})

	if pubErr := inv.publish(ctx, models.EventDiagnosisFailed, map[string]interface{}{
		"stage": err.Stage,
		"error": err.Error(),
	}); pubErr != nil {
		logger.Log.WithError(pubErr).Warn("failed to publish diagnosis failure")
	}
	return models.DiagnosisResult{}, err
}

func (inv *Invoker) audit(ctx context.Context, row features.Row, result models.DiagnosisResult) {
	if inv.recorder != nil {
		if err := inv.recorder.RecordDiagnosis(ctx, row.Map(), result); err != nil {
			logger.Log.WithError(err).WithField("diagnosis_id", result.ID).Warn("failed to record diagnosis")
		}
	}
	err := inv.publish(ctx, models.EventDiagnosisCompleted, map[string]interface{}{
		"diagnosis_id": result.ID,
		"label":        result.Label,
		"code":         result.Code,
		"imc":          result.IMC,
		"latency_ms":   result.LatencyMs,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("diagnosis_id", result.ID).Warn("failed to publish diagnosis event")
	}
}

func (inv *Invoker) publish(ctx context.Context, eventType string, data map[string]interface{}) error {
	if inv.publisher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return inv.publisher.PublishEvent(ctx, eventType, eventSource, data)
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
