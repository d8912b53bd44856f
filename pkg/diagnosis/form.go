// Package diagnosis describes the patient form and turns raw widget values
// into a validated PatientInput.
package diagnosis

import (
	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
)

type Kind string

const (
	KindInteger Kind = "integer"
	KindDecimal Kind = "decimal"
	KindEnum    Kind = "enum"
)

type Widget string

const (
	WidgetNumber Widget = "number"
	WidgetSlider Widget = "slider"
	WidgetSelect Widget = "select"
)

type Section string

const (
	SectionBody      Section = "body"
	SectionEating    Section = "eating"
	SectionLifestyle Section = "lifestyle"
)

// Field is one input widget and its domain. Default is the raw value the
// widget starts with.
type Field struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Widget  Widget   `json:"widget"`
	Section Section  `json:"section"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Step    float64  `json:"step"`
	Default string   `json:"default"`
	Choices []string `json:"choices,omitempty"`
}

var (
	yesNo     = []string{"yes", "no"}
	frequency = []string{"no", "Sometimes", "Frequently", "Always"}
)

// Fields lists the form in display order.
var Fields = []Field{
	{Name: "Age", Kind: KindInteger, Widget: WidgetNumber, Section: SectionBody, Min: 14, Max: 100, Step: 1, Default: "25"},
	{Name: "Height", Kind: KindDecimal, Widget: WidgetNumber, Section: SectionBody, Min: 1.0, Max: 2.5, Step: 0.01, Default: "1.70"},
	{Name: "Weight", Kind: KindDecimal, Widget: WidgetNumber, Section: SectionBody, Min: 30.0, Max: 250.0, Step: 0.1, Default: "70.0"},
	{Name: "Gender", Kind: KindEnum, Widget: WidgetSelect, Section: SectionBody, Default: "Female", Choices: []string{"Female", "Male"}},
	{Name: "family_history", Kind: KindEnum, Widget: WidgetSelect, Section: SectionBody, Default: "yes", Choices: yesNo},

	{Name: "FAVC", Kind: KindEnum, Widget: WidgetSelect, Section: SectionEating, Default: "yes", Choices: yesNo},
	{Name: "FCVC", Kind: KindInteger, Widget: WidgetSlider, Section: SectionEating, Min: 1, Max: 3, Step: 1, Default: "2"},
	{Name: "NCP", Kind: KindInteger, Widget: WidgetSlider, Section: SectionEating, Min: 1, Max: 4, Step: 1, Default: "3"},
	{Name: "CAEC", Kind: KindEnum, Widget: WidgetSelect, Section: SectionEating, Default: "no", Choices: frequency},
	{Name: "CH2O", Kind: KindInteger, Widget: WidgetSlider, Section: SectionEating, Min: 1, Max: 3, Step: 1, Default: "2"},
	{Name: "SCC", Kind: KindEnum, Widget: WidgetSelect, Section: SectionEating, Default: "yes", Choices: yesNo},

	{Name: "SMOKE", Kind: KindEnum, Widget: WidgetSelect, Section: SectionLifestyle, Default: "yes", Choices: yesNo},
	{Name: "FAF", Kind: KindInteger, Widget: WidgetSlider, Section: SectionLifestyle, Min: 0, Max: 3, Step: 1, Default: "1"},
	{Name: "TUE", Kind: KindInteger, Widget: WidgetSlider, Section: SectionLifestyle, Min: 0, Max: 2, Step: 1, Default: "1"},
	{Name: "CALC", Kind: KindEnum, Widget: WidgetSelect, Section: SectionLifestyle, Default: "no", Choices: frequency},
	{Name: "MTRANS", Kind: KindEnum, Widget: WidgetSelect, Section: SectionLifestyle, Default: "Automobile", Choices: []string{"Automobile", "Motorbike", "Bike", "Public_Transportation", "Walking"}},
}

// Sections in display order.
var Sections = []Section{SectionBody, SectionEating, SectionLifestyle}

func Lookup(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// InSection returns the fields of one section, in display order.
func InSection(s Section) []Field {
	var out []Field
	for _, f := range Fields {
		if f.Section == s {
			out = append(out, f)
		}
	}
	return out
}

func (f Field) allows(choice string) bool {
	for _, c := range f.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

// Defaults is the record a untouched form would submit.
func Defaults() models.PatientInput {
	in, _ := NewDraft().Submit()
	return in
}
