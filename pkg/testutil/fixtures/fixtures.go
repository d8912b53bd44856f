// Package fixtures builds small pipeline, label encoder and dataset artifacts
// for tests. The pipeline scores classes by standardized IMC only, so results
// are easy to predict.
package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fe2Far/fiap-challenge4/pkg/ml/labels"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/pipeline"
)

// Classes is a three-level ordering used across tests. It is deliberately
// not alphabetical.
var Classes = []string{"Normal_Weight", "Overweight_Level_I", "Obesity_Type_I"}

var categories = []pipeline.CategoricalFeature{
	{Name: "Gender", Categories: []string{"Female", "Male"}},
	{Name: "family_history", Categories: []string{"no", "yes"}},
	{Name: "FAVC", Categories: []string{"no", "yes"}},
	{Name: "CAEC", Categories: []string{"Always", "Frequently", "Sometimes", "no"}},
	{Name: "SMOKE", Categories: []string{"no", "yes"}},
	{Name: "SCC", Categories: []string{"no", "yes"}},
	{Name: "CALC", Categories: []string{"Always", "Frequently", "Sometimes", "no"}},
	{Name: "MTRANS", Categories: []string{"Automobile", "Bike", "Motorbike", "Public_Transportation", "Walking"}},
}

// PipelineArtifact expects the water and screen-time columns under the given
// names. Class k scores (2k - (n-1)) * (IMC-25)/5.
func PipelineArtifact(classes []string, water, screen string) pipeline.Artifact {
	numeric := []pipeline.NumericFeature{
		{Name: "Age", Scale: 1},
		{Name: "Height", Scale: 1},
		{Name: "Weight", Scale: 1},
		{Name: "FCVC", Scale: 1},
		{Name: "NCP", Scale: 1},
		{Name: water, Scale: 1},
		{Name: "FAF", Scale: 1},
		{Name: screen, Scale: 1},
		{Name: "IMC", Mean: 25, Scale: 5},
	}
	pre := pipeline.Preprocessor{Numeric: numeric, Categorical: categories}

	width := pre.Width()
	imcIndex := len(numeric) - 1
	coefficients := make([][]float64, len(classes))
	intercepts := make([]float64, len(classes))
	for k := range classes {
		coefficients[k] = make([]float64, width)
		coefficients[k][imcIndex] = float64(2*k - (len(classes) - 1))
	}

	return pipeline.Artifact{
		Name:    "obesity-fixture",
		Version: "test",
		FeatureNames: []string{
			"Gender", "Age", "Height", "Weight", "family_history", "FAVC", "FCVC", "NCP",
			"CAEC", "SMOKE", water, "SCC", "FAF", screen, "CALC", "MTRANS", "IMC",
		},
		Preprocessor: pre,
		Classifier: pipeline.ClassifierSpec{
			Type:         pipeline.ClassifierLogistic,
			Intercepts:   intercepts,
			Coefficients: coefficients,
		},
	}
}

func PipelineJSON(t testing.TB, classes []string, water, screen string) []byte {
	t.Helper()
	data, err := json.Marshal(PipelineArtifact(classes, water, screen))
	if err != nil {
		t.Fatalf("marshal pipeline fixture: %v", err)
	}
	return data
}

func LabelEncoderJSON(t testing.TB, classes []string) []byte {
	t.Helper()
	enc, err := labels.New(classes)
	if err != nil {
		t.Fatalf("label encoder fixture: %v", err)
	}
	data, err := json.Marshal(enc)
	if err != nil {
		t.Fatalf("marshal label encoder fixture: %v", err)
	}
	return data
}

// DatasetCSV is a small reference table. Labels appear in an order that
// differs from Classes so ordering tests are meaningful.
func DatasetCSV(water, screen string) string {
	header := []string{
		"Gender", "Age", "Height", "Weight", "family_history", "FAVC", "FCVC", "NCP",
		"CAEC", "SMOKE", water, "SCC", "FAF", screen, "CALC", "MTRANS", "Obesity",
	}
	rows := []string{
		"Female,21,1.62,64,yes,no,2,3,Sometimes,no,2,no,0,1,no,Public_Transportation,Normal_Weight",
		"Male,27,1.80,87,no,no,3,3,Sometimes,no,2,no,2,0,Frequently,Walking,Overweight_Level_I",
		"Male,23,1.80,77,yes,no,2,3,Sometimes,no,2,no,2,1,Frequently,Public_Transportation,Normal_Weight",
		"Female,22,1.52,56,no,no,3,3,Sometimes,yes,3,yes,3,0,Sometimes,Public_Transportation,Normal_Weight",
		"Male,29,1.62,53,no,yes,2,1,Sometimes,no,2,no,0,0,Sometimes,Automobile,Obesity_Type_I",
		"Female,26,1.50,55,yes,yes,2,1,Sometimes,no,3,no,1,1,Sometimes,Automobile,Obesity_Type_I",
		"Male,33,1.85,99,yes,yes,2,3,Frequently,no,1,no,1,2,no,Bike,Overweight_Level_I",
	}
	return strings.Join(header, ",") + "\n" + strings.Join(rows, "\n") + "\n"
}

// Files are the paths written by WriteArtifacts.
type Files struct {
	Pipeline     string
	LabelEncoder string
	Dataset      string
}

// WriteArtifacts writes a consistent pipeline, encoder and dataset into dir.
func WriteArtifacts(t testing.TB, dir, water, screen string) Files {
	t.Helper()
	files := Files{
		Pipeline:     filepath.Join(dir, "pipeline_obesidade.json"),
		LabelEncoder: filepath.Join(dir, "label_encoder.json"),
		Dataset:      filepath.Join(dir, "Obesity.csv"),
	}
	write(t, files.Pipeline, PipelineJSON(t, Classes, water, screen))
	write(t, files.LabelEncoder, LabelEncoderJSON(t, Classes))
	write(t, files.Dataset, []byte(DatasetCSV(water, screen)))
	return files
}

func write(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
