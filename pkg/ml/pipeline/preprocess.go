package pipeline

import (
	"fmt"

	"github.com/Fe2Far/fiap-challenge4/pkg/features"
)

// Preprocessor standardizes numeric columns and one-hot encodes categorical
// columns. The output vector is all numeric columns followed by the one-hot
// blocks, each in declaration order.
type Preprocessor struct {
	Numeric     []NumericFeature     `json:"numeric"`
	Categorical []CategoricalFeature `json:"categorical"`
}

type NumericFeature struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

type CategoricalFeature struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// UnknownCategoryError is raised for categorical values never seen in training.
type UnknownCategoryError struct {
	Feature string
	Value   string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for feature %s", e.Value, e.Feature)
}

func (p Preprocessor) Width() int {
	width := len(p.Numeric)
	for _, c := range p.Categorical {
		width += len(c.Categories)
	}
	return width
}

func (p Preprocessor) Transform(row features.Row) ([]float64, error) {
	x := make([]float64, 0, p.Width())
	for _, n := range p.Numeric {
		v, err := row.Float(n.Name)
		if err != nil {
			return nil, err
		}
		scale := n.Scale
		if scale == 0 {
			scale = 1
		}
		x = append(x, (v-n.Mean)/scale)
	}
	for _, c := range p.Categorical {
		v, err := row.String(c.Name)
		if err != nil {
			return nil, err
		}
		hit := false
		for _, category := range c.Categories {
			if category == v {
				x = append(x, 1)
				hit = true
			} else {
				x = append(x, 0)
			}
		}
		if !hit {
			return nil, &UnknownCategoryError{Feature: c.Name, Value: v}
		}
	}
	return x, nil
}

// validate checks that the preprocessor covers exactly the feature names.
func (p Preprocessor) validate(featureNames []string) error {
	covered := make(map[string]bool)
	for _, n := range p.Numeric {
		if covered[n.Name] {
			return fmt.Errorf("feature %s declared twice", n.Name)
		}
		covered[n.Name] = true
	}
	for _, c := range p.Categorical {
		if covered[c.Name] {
			return fmt.Errorf("feature %s declared twice", c.Name)
		}
		if len(c.Categories) == 0 {
			return fmt.Errorf("categorical feature %s has no categories", c.Name)
		}
		covered[c.Name] = true
	}
	for _, name := range featureNames {
		if !covered[name] {
			return fmt.Errorf("feature %s has no preprocessing step", name)
		}
		delete(covered, name)
	}
	for name := range covered {
		return fmt.Errorf("preprocessing step for unknown feature %s", name)
	}
	return nil
}
