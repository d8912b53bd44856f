package diagnosis

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
)

var ErrDraftSubmitted = errors.New("draft already submitted")

// Draft accumulates raw widget values. Editing has no effect downstream;
// only Submit materializes a PatientInput, after which the draft is frozen.
type Draft struct {
	values    map[string]string
	submitted *models.PatientInput
}

func NewDraft() *Draft {
	return &Draft{values: make(map[string]string)}
}

// FromValues fills a draft from a posted form. Unknown keys are ignored and
// absent fields keep their defaults.
func FromValues(values url.Values) *Draft {
	d := NewDraft()
	for _, f := range Fields {
		if raw, ok := values[f.Name]; ok && len(raw) > 0 {
			d.values[f.Name] = raw[0]
		}
	}
	return d
}

func (d *Draft) Set(name, raw string) error {
	if d.submitted != nil {
		return ErrDraftSubmitted
	}
	if _, ok := Lookup(name); !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	d.values[name] = raw
	return nil
}

// Value is the raw value the widget currently shows.
func (d *Draft) Value(name string) string {
	if v, ok := d.values[name]; ok {
		return v
	}
	if f, ok := Lookup(name); ok {
		return f.Default
	}
	return ""
}

func (d *Draft) Submitted() bool {
	return d.submitted != nil
}

// Submit validates every field and freezes the draft. A failed submit leaves
// the draft editable.
func (d *Draft) Submit() (models.PatientInput, error) {
	if d.submitted != nil {
		return *d.submitted, nil
	}

	var in models.PatientInput
	var problems []FieldError
	unparsed := make(map[string]bool)
	for _, f := range Fields {
		if err := assign(&in, f, d.Value(f.Name)); err != nil {
			problems = append(problems, FieldError{Field: f.Name, Reason: err.Error()})
			unparsed[f.Name] = true
		}
	}
	var ve *ValidationError
	if err := Validate(in); errors.As(err, &ve) {
		for _, p := range ve.Problems {
			if !unparsed[p.Field] {
				problems = append(problems, p)
			}
		}
	}
	if len(problems) > 0 {
		return models.PatientInput{}, &ValidationError{Problems: problems}
	}

	d.submitted = &in
	return in, nil
}
