// Package features builds the pipeline's input row from a form submission.
package features

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
	"github.com/Fe2Far/fiap-challenge4/pkg/diagnosis"
)

const (
	ColumnIMC = "IMC"

	// Training-time names the row starts with.
	WaterDefault  = "CH20"
	ScreenDefault = "TUE"

	// Alternative names some training runs used.
	WaterAlt  = "CH2O"
	ScreenAlt = "TER"
)

var ErrDivisionUndefined = errors.New("body mass index undefined for zero height")

// SchemaMismatchError means the reference dataset carries neither naming
// variant for one or more fields, so the expected column names are unknown.
type SchemaMismatchError struct {
	Missing [][2]string
}

func (e *SchemaMismatchError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, pair := range e.Missing {
		parts[i] = pair[0] + "/" + pair[1]
	}
	return "schema mismatch: dataset has none of " + strings.Join(parts, ", ")
}

func IsSchemaMismatch(err error) bool {
	var se *SchemaMismatchError
	return errors.As(err, &se)
}

// Naming is the pair of column names the trained pipeline expects.
type Naming struct {
	Water  string
	Screen string
}

// ResolveNaming inspects the reference dataset header. The default name wins
// whenever it is present; the alternative is used only when the default is
// absent.
func ResolveNaming(datasetColumns []string) (Naming, error) {
	present := make(map[string]bool, len(datasetColumns))
	for _, c := range datasetColumns {
		present[c] = true
	}

	var naming Naming
	var missing [][2]string

	switch {
	case present[WaterDefault]:
		naming.Water = WaterDefault
	case present[WaterAlt]:
		naming.Water = WaterAlt
	default:
		missing = append(missing, [2]string{WaterDefault, WaterAlt})
	}

	switch {
	case present[ScreenDefault]:
		naming.Screen = ScreenDefault
	case present[ScreenAlt]:
		naming.Screen = ScreenAlt
	default:
		missing = append(missing, [2]string{ScreenDefault, ScreenAlt})
	}

	if len(missing) > 0 {
		return Naming{}, &SchemaMismatchError{Missing: missing}
	}
	return naming, nil
}

// BMI is weight (kg) over squared height (m).
func BMI(weight, height float64) (float64, error) {
	if height == 0 {
		return 0, ErrDivisionUndefined
	}
	return weight / (height * height), nil
}

// Assemble builds the 17-column row: the 16 form fields under their
// training names plus IMC, renamed to the convention found in the dataset.
func Assemble(in models.PatientInput, datasetColumns []string) (Row, error) {
	if err := diagnosis.Validate(in); err != nil {
		return Row{}, err
	}

	imc, err := BMI(in.Weight, in.Height)
	if err != nil {
		return Row{}, err
	}

	naming, err := ResolveNaming(datasetColumns)
	if err != nil {
		return Row{}, err
	}

	row := NewRow()
	row.Set("Gender", in.Gender)
	row.Set("Age", float64(in.Age))
	row.Set("Height", in.Height)
	row.Set("Weight", in.Weight)
	row.Set("family_history", in.FamilyHistory)
	row.Set("FAVC", in.FAVC)
	row.Set("FCVC", float64(in.FCVC))
	row.Set("NCP", float64(in.NCP))
	row.Set("CAEC", in.CAEC)
	row.Set("SMOKE", in.SMOKE)
	row.Set(WaterDefault, float64(in.CH2O))
	row.Set("SCC", in.SCC)
	row.Set("FAF", float64(in.FAF))
	row.Set(ScreenDefault, float64(in.TUE))
	row.Set("CALC", in.CALC)
	row.Set("MTRANS", in.MTRANS)
	row.Set(ColumnIMC, imc)

	row.Rename(WaterDefault, naming.Water)
	row.Rename(ScreenDefault, naming.Screen)

	if row.Len() != 17 {
		return Row{}, fmt.Errorf("assembled %d columns, want 17", row.Len())
	}
	return row, nil
}
