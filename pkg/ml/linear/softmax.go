package linear

import (
	"fmt"
	"math"
)

// Weights of a multinomial logistic model: one coefficient row and one
// intercept per class.
type Weights struct {
	Intercepts   []float64   `json:"intercepts"`
	Coefficients [][]float64 `json:"coefficients"`
}

// Validate checks the matrix shape against the preprocessed vector width.
func (w Weights) Validate(featureCount int) error {
	if len(w.Coefficients) == 0 {
		return fmt.Errorf("no coefficient rows")
	}
	if len(w.Intercepts) != len(w.Coefficients) {
		return fmt.Errorf("%d intercepts for %d classes", len(w.Intercepts), len(w.Coefficients))
	}
	for k, row := range w.Coefficients {
		if len(row) != featureCount {
			return fmt.Errorf("class %d has %d coefficients, want %d", k, len(row), featureCount)
		}
	}
	return nil
}

func (w Weights) Classes() int {
	return len(w.Coefficients)
}

// Predict returns the argmax class and the softmax distribution.
func Predict(weights Weights, sample []float64) (int, []float64) {
	scores := make([]float64, len(weights.Coefficients))
	for k, row := range weights.Coefficients {
		scores[k] = dot(row, sample) + weights.Intercepts[k]
	}
	probs := Softmax(scores)
	return Argmax(probs), probs
}

func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax picks the lowest index among ties.
func Argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}
