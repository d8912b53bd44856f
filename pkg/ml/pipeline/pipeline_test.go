package pipeline_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
	"github.com/Fe2Far/fiap-challenge4/pkg/features"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/linear"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/pipeline"
	"github.com/Fe2Far/fiap-challenge4/pkg/testutil/fixtures"
)

func patient(weight float64) models.PatientInput {
	return models.PatientInput{
		Gender: "Male", Age: 30, Height: 1.80, Weight: weight,
		FamilyHistory: "yes", FAVC: "yes", FCVC: 2, NCP: 3, CAEC: "Sometimes",
		SMOKE: "no", CH2O: 2, SCC: "no", FAF: 1, TUE: 1, CALC: "Sometimes",
		MTRANS: "Automobile",
	}
}

func assemble(t *testing.T, weight float64, columns ...string) features.Row {
	t.Helper()
	row, err := features.Assemble(patient(weight), columns)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return row
}

func decode(t *testing.T, water, screen string) pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.Decode(fixtures.PipelineJSON(t, fixtures.Classes, water, screen), pipeline.Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestPredictScoresByIMC(t *testing.T) {
	p := decode(t, "CH20", "TUE")

	cases := []struct {
		weight float64
		want   int
	}{
		{weight: 95, want: 2},   // IMC 29.3
		{weight: 78.5, want: 0}, // IMC 24.2
	}
	for _, tc := range cases {
		code, err := p.Predict(assemble(t, tc.weight, "CH20", "TUE"))
		if err != nil {
			t.Fatalf("weight %v: %v", tc.weight, err)
		}
		if code != tc.want {
			t.Fatalf("weight %v: expected class %d, got %d", tc.weight, tc.want, code)
		}
	}
}

func TestPredictProbaIsDistribution(t *testing.T) {
	p := decode(t, "CH20", "TUE")
	proba, ok := p.(pipeline.ProbabilityPredictor)
	if !ok {
		t.Fatal("logistic pipeline should expose probabilities")
	}
	code, probs, err := proba.PredictWithProba(assemble(t, 95, "CH20", "TUE"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != linear.Argmax(probs) {
		t.Fatalf("code %d is not the argmax of %v", code, probs)
	}
	var sum float64
	for _, v := range probs {
		sum += v
	}
	if len(probs) != 3 || math.Abs(sum-1) > 1e-9 {
		t.Fatalf("expected 3 probabilities summing to 1, got %v", probs)
	}
}

func TestPredictRejectsWrongColumnNames(t *testing.T) {
	p := decode(t, "CH2O", "TER")
	_, err := p.Predict(assemble(t, 80, "CH20", "TUE"))

	var schemaErr *pipeline.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if len(schemaErr.Missing) != 2 || len(schemaErr.Unexpected) != 2 {
		t.Fatalf("unexpected schema error %+v", schemaErr)
	}

	if _, err := p.Predict(assemble(t, 80, "CH2O", "TER")); err != nil {
		t.Fatalf("reconciled row should predict: %v", err)
	}
}

func TestPredictUnknownCategory(t *testing.T) {
	p := decode(t, "CH20", "TUE")
	row := assemble(t, 80, "CH20", "TUE")
	row.Set("MTRANS", "Train")

	var unknown *pipeline.UnknownCategoryError
	if _, err := p.Predict(row); !errors.As(err, &unknown) {
		t.Fatalf("expected unknown category error, got %v", err)
	}
}

func TestFeatureNamesAreCopied(t *testing.T) {
	p := decode(t, "CH20", "TUE")
	names := p.FeatureNames()
	if len(names) != 17 {
		t.Fatalf("expected 17 features, got %d", len(names))
	}
	names[0] = "changed"
	if p.FeatureNames()[0] != "Gender" {
		t.Fatal("FeatureNames must return a copy")
	}
}

func TestDecodeRejectsInconsistentArtifacts(t *testing.T) {
	base := fixtures.PipelineArtifact(fixtures.Classes, "CH20", "TUE")

	cases := map[string]func(*pipeline.Artifact){
		"no features":        func(a *pipeline.Artifact) { a.FeatureNames = nil },
		"unprocessed column": func(a *pipeline.Artifact) { a.FeatureNames = append(a.FeatureNames, "extra") },
		"short coefficients": func(a *pipeline.Artifact) { a.Classifier.Coefficients[0] = a.Classifier.Coefficients[0][:3] },
		"unknown classifier": func(a *pipeline.Artifact) { a.Classifier.Type = "svm" },
		"onnx without model": func(a *pipeline.Artifact) { a.Classifier.Type = pipeline.ClassifierONNX },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			var artifact pipeline.Artifact
			raw, _ := json.Marshal(base)
			_ = json.Unmarshal(raw, &artifact)
			mutate(&artifact)
			data, _ := json.Marshal(artifact)
			if _, err := pipeline.Decode(data, pipeline.Options{}); err == nil {
				t.Fatal("expected decode error")
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := pipeline.Decode([]byte("not json"), pipeline.Options{}); err == nil {
		t.Fatal("expected error")
	}
}
