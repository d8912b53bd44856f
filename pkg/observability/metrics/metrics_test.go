package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePredictionCountsByStatus(t *testing.T) {
	before := testutil.ToFloat64(Predictions.WithLabelValues("Obesity_Type_I", "success"))
	ObservePrediction("Obesity_Type_I", time.Millisecond, nil)
	if got := testutil.ToFloat64(Predictions.WithLabelValues("Obesity_Type_I", "success")); got != before+1 {
		t.Fatalf("expected success counter %v, got %v", before+1, got)
	}

	failed := testutil.ToFloat64(Predictions.WithLabelValues("none", "error"))
	ObservePrediction("ignored", time.Millisecond, errors.New("boom"))
	if got := testutil.ToFloat64(Predictions.WithLabelValues("none", "error")); got != failed+1 {
		t.Fatalf("expected error counter %v, got %v", failed+1, got)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
}
