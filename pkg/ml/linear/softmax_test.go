package linear

import (
	"math"
	"testing"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	probs := Softmax([]float64{1000, 1001, 999})
	var sum float64
	for _, p := range probs {
		if math.IsNaN(p) {
			t.Fatal("softmax overflowed")
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("expected sum 1, got %v", sum)
	}
	if Argmax(probs) != 1 {
		t.Fatalf("expected argmax 1, got %d", Argmax(probs))
	}
}

func TestPredictPicksHighestScore(t *testing.T) {
	w := Weights{
		Intercepts:   []float64{0, 0, 0},
		Coefficients: [][]float64{{-2, 0}, {0, 0}, {2, 0}},
	}
	code, probs := Predict(w, []float64{0.9, 5})
	if code != 2 {
		t.Fatalf("expected class 2, got %d (%v)", code, probs)
	}
	code, _ = Predict(w, []float64{-0.2, 5})
	if code != 0 {
		t.Fatalf("expected class 0, got %d", code)
	}
}

func TestArgmaxTiesPreferFirst(t *testing.T) {
	if got := Argmax([]float64{0.5, 0.5}); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestValidateShape(t *testing.T) {
	w := Weights{Intercepts: []float64{0}, Coefficients: [][]float64{{1, 2}}}
	if err := w.Validate(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Validate(3); err == nil {
		t.Fatal("expected width mismatch")
	}
	w.Intercepts = nil
	if err := w.Validate(2); err == nil {
		t.Fatal("expected intercept mismatch")
	}
}
