package web

import (
	"errors"
	"sort"
	"strconv"

	"github.com/Fe2Far/fiap-challenge4/pkg/analytics"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
	"github.com/Fe2Far/fiap-challenge4/pkg/diagnosis"
	"github.com/Fe2Far/fiap-challenge4/pkg/features"
	"github.com/Fe2Far/fiap-challenge4/pkg/serving"
	"github.com/Fe2Far/fiap-challenge4/pkg/session"
)

type pageView struct {
	L         locale
	LangQuery string
	Nav       []navItem
	Error     string

	// analytics
	Charts []analytics.Chart

	// diagnostic
	Sections      []sectionView
	Result        *models.DiagnosisResult
	Probabilities []classProbability
}

type navItem struct {
	Page   session.Page
	Label  string
	Active bool
}

type sectionView struct {
	Title  string
	Fields []fieldView
}

type fieldView struct {
	Name    string
	Label   string
	Widget  diagnosis.Widget
	Min     string
	Max     string
	Step    string
	Value   string
	Choices []choiceView
	Error   string
}

type choiceView struct {
	Value    string
	Selected bool
}

type classProbability struct {
	Class string
	Value float64
}

func newPageView(l locale, langQuery string, active session.Page) pageView {
	nav := make([]navItem, 0, len(session.Pages))
	for _, p := range session.Pages {
		nav = append(nav, navItem{Page: p, Label: l.T("page." + string(p)), Active: p == active})
	}
	return pageView{L: l, LangQuery: langQuery, Nav: nav}
}

// formSections renders the form from a draft. fieldErrors may be nil.
func formSections(l locale, draft *diagnosis.Draft, fieldErrors map[string]string) []sectionView {
	sections := make([]sectionView, 0, len(diagnosis.Sections))
	for _, s := range diagnosis.Sections {
		view := sectionView{Title: l.T("section." + string(s))}
		for _, f := range diagnosis.InSection(s) {
			value := draft.Value(f.Name)
			fv := fieldView{
				Name:   f.Name,
				Label:  l.T("field." + f.Name),
				Widget: f.Widget,
				Value:  value,
				Error:  fieldErrors[f.Name],
			}
			if f.Kind == diagnosis.KindEnum {
				for _, c := range f.Choices {
					fv.Choices = append(fv.Choices, choiceView{Value: c, Selected: c == value})
				}
			} else {
				fv.Min = formatNumber(f.Min)
				fv.Max = formatNumber(f.Max)
				fv.Step = formatNumber(f.Step)
			}
			view.Fields = append(view.Fields, fv)
		}
		sections = append(sections, view)
	}
	return sections
}

// sortedProbabilities follows the encoder class order.
func sortedProbabilities(classes []string, probs map[string]float64) []classProbability {
	if len(probs) == 0 {
		return nil
	}
	rank := make(map[string]int, len(classes))
	for i, c := range classes {
		rank[c] = i
	}
	out := make([]classProbability, 0, len(probs))
	for class, v := range probs {
		out = append(out, classProbability{Class: class, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return rank[out[i].Class] < rank[out[j].Class] })
	return out
}

// errorKind maps a submission error to its message key and HTTP status.
func errorKind(err error) (kind, key string, status int) {
	switch {
	case diagnosis.IsValidationError(err):
		return "validation", "error.validation", 422
	case features.IsSchemaMismatch(err):
		return "schema_mismatch", "error.schema", 422
	case errors.Is(err, features.ErrDivisionUndefined):
		return "division_undefined", "error.bmi", 422
	case serving.IsPredictionError(err):
		return "prediction", "error.prediction", 500
	default:
		return "internal", "error.prediction", 500
	}
}

func fieldErrors(err error) map[string]string {
	var ve *diagnosis.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields()
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
