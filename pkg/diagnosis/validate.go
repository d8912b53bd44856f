package diagnosis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
)

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects every out-of-domain field of one submission.
type ValidationError struct {
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Field + " " + p.Reason
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Fields maps field names to their problem, for API responses.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Problems))
	for _, p := range e.Problems {
		out[p.Field] = p.Reason
	}
	return out
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks a record against the form domains. It is the server-side
// twin of the widget constraints.
func Validate(in models.PatientInput) error {
	var problems []FieldError
	for _, f := range Fields {
		if reason := f.check(in); reason != "" {
			problems = append(problems, FieldError{Field: f.Name, Reason: reason})
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (f Field) check(in models.PatientInput) string {
	if f.Kind == KindEnum {
		v := stringValue(in, f.Name)
		if !f.allows(v) {
			return fmt.Sprintf("must be one of %s, got %q", strings.Join(f.Choices, ", "), v)
		}
		return ""
	}
	v := numericValue(in, f.Name)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "must be a finite number"
	}
	if v < f.Min || v > f.Max {
		return fmt.Sprintf("must be between %s and %s", formatBound(f.Min), formatBound(f.Max))
	}
	return ""
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stringValue(in models.PatientInput, name string) string {
	switch name {
	case "Gender":
		return in.Gender
	case "family_history":
		return in.FamilyHistory
	case "FAVC":
		return in.FAVC
	case "CAEC":
		return in.CAEC
	case "SMOKE":
		return in.SMOKE
	case "SCC":
		return in.SCC
	case "CALC":
		return in.CALC
	case "MTRANS":
		return in.MTRANS
	}
	return ""
}

func numericValue(in models.PatientInput, name string) float64 {
	switch name {
	case "Age":
		return float64(in.Age)
	case "Height":
		return in.Height
	case "Weight":
		return in.Weight
	case "FCVC":
		return float64(in.FCVC)
	case "NCP":
		return float64(in.NCP)
	case "CH2O":
		return float64(in.CH2O)
	case "FAF":
		return float64(in.FAF)
	case "TUE":
		return float64(in.TUE)
	}
	return math.NaN()
}

// assign parses raw into the matching PatientInput field.
func assign(in *models.PatientInput, f Field, raw string) error {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindEnum:
		return assignString(in, f.Name, raw)
	case KindInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("must be an integer")
		}
		return assignInt(in, f.Name, n)
	case KindDecimal:
		v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil {
			return errors.New("must be a number")
		}
		return assignFloat(in, f.Name, v)
	}
	return fmt.Errorf("unsupported kind %s", f.Kind)
}

func assignString(in *models.PatientInput, name, v string) error {
	switch name {
	case "Gender":
		in.Gender = v
	case "family_history":
		in.FamilyHistory = v
	case "FAVC":
		in.FAVC = v
	case "CAEC":
		in.CAEC = v
	case "SMOKE":
		in.SMOKE = v
	case "SCC":
		in.SCC = v
	case "CALC":
		in.CALC = v
	case "MTRANS":
		in.MTRANS = v
	default:
		return fmt.Errorf("unknown field %s", name)
	}
	return nil
}

func assignInt(in *models.PatientInput, name string, v int) error {
	switch name {
	case "Age":
		in.Age = v
	case "FCVC":
		in.FCVC = v
	case "NCP":
		in.NCP = v
	case "CH2O":
		in.CH2O = v
	case "FAF":
		in.FAF = v
	case "TUE":
		in.TUE = v
	default:
		return fmt.Errorf("unknown field %s", name)
	}
	return nil
}

func assignFloat(in *models.PatientInput, name string, v float64) error {
	switch name {
	case "Height":
		in.Height = v
	case "Weight":
		in.Weight = v
	default:
		return fmt.Errorf("unknown field %s", name)
	}
	return nil
}
