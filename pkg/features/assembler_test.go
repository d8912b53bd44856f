package features

import (
	"errors"
	"math"
	"testing"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
	"github.com/Fe2Far/fiap-challenge4/pkg/diagnosis"
)

var baseColumns = []string{
	"Gender", "Age", "Height", "Weight", "family_history", "FAVC", "FCVC", "NCP",
	"CAEC", "SMOKE", "SCC", "FAF", "CALC", "MTRANS", "Obesity",
}

func columnsWith(extra ...string) []string {
	return append(append([]string{}, baseColumns...), extra...)
}

func scenario() models.PatientInput {
	return models.PatientInput{
		Gender: "Male", Age: 30, Height: 1.80, Weight: 95.0,
		FamilyHistory: "yes", FAVC: "yes", FCVC: 2, NCP: 3, CAEC: "Sometimes",
		SMOKE: "no", CH2O: 2, SCC: "no", FAF: 1, TUE: 1, CALC: "Sometimes",
		MTRANS: "Automobile",
	}
}

func TestBMI(t *testing.T) {
	imc, err := BMI(70.0, 1.70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(imc-24.221) > 1e-3 {
		t.Fatalf("expected 24.221, got %v", imc)
	}
}

func TestBMIZeroHeight(t *testing.T) {
	if _, err := BMI(70, 0); !errors.Is(err, ErrDivisionUndefined) {
		t.Fatalf("expected ErrDivisionUndefined, got %v", err)
	}
}

func TestAssembleScenario(t *testing.T) {
	row, err := Assemble(scenario(), columnsWith("CH20", "TUE"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Len() != 17 {
		t.Fatalf("expected 17 columns, got %d", row.Len())
	}
	imc, _ := row.Float("IMC")
	if math.Abs(imc-29.32) > 1e-2 {
		t.Fatalf("expected IMC 29.32, got %v", imc)
	}
	want := []string{
		"Gender", "Age", "Height", "Weight", "family_history", "FAVC", "FCVC", "NCP",
		"CAEC", "SMOKE", "CH20", "SCC", "FAF", "TUE", "CALC", "MTRANS", "IMC",
	}
	got := row.Columns()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if g, _ := row.String("Gender"); g != "Male" {
		t.Fatalf("expected Gender Male, got %s", g)
	}
}

func TestAssembleRenamesToDatasetConvention(t *testing.T) {
	row, err := Assemble(scenario(), columnsWith("CH2O", "TER"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Has("CH20") || row.Has("TUE") {
		t.Fatalf("expected old names to be gone: %v", row.Columns())
	}
	water, err := row.Float("CH2O")
	if err != nil || water != 2 {
		t.Fatalf("expected CH2O=2, got %v (%v)", water, err)
	}
	if _, err := row.Float("TER"); err != nil {
		t.Fatalf("expected TER: %v", err)
	}
	cols := row.Columns()
	if cols[10] != "CH2O" || cols[13] != "TER" {
		t.Fatalf("rename must keep positions: %v", cols)
	}
}

func TestResolveNaming(t *testing.T) {
	cases := []struct {
		name    string
		columns []string
		want    Naming
	}{
		{"defaults", columnsWith("CH20", "TUE"), Naming{"CH20", "TUE"}},
		{"alternatives", columnsWith("CH2O", "TER"), Naming{"CH2O", "TER"}},
		{"mixed", columnsWith("CH2O", "TUE"), Naming{"CH2O", "TUE"}},
		{"both water variants", columnsWith("CH20", "CH2O", "TER"), Naming{"CH20", "TER"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveNaming(tc.columns)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestAssembleSchemaMismatch(t *testing.T) {
	_, err := Assemble(scenario(), columnsWith("TUE"))
	if !IsSchemaMismatch(err) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	var se *SchemaMismatchError
	errors.As(err, &se)
	if len(se.Missing) != 1 || se.Missing[0][0] != "CH20" {
		t.Fatalf("expected only the water field missing, got %v", se.Missing)
	}

	_, err = Assemble(scenario(), baseColumns)
	errors.As(err, &se)
	if len(se.Missing) != 2 {
		t.Fatalf("expected both fields missing, got %v", se.Missing)
	}
}

func TestAssembleRejectsOutOfDomainInput(t *testing.T) {
	in := scenario()
	in.Height = 0
	_, err := Assemble(in, columnsWith("CH20", "TUE"))
	if !diagnosis.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRowRenameMissingIsNoop(t *testing.T) {
	row := NewRow()
	row.Set("a", 1.0)
	row.Rename("b", "c")
	if row.Len() != 1 || !row.Has("a") {
		t.Fatalf("unexpected row %v", row.Columns())
	}
}
