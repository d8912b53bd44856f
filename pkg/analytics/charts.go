// Package analytics turns the reference dataset into Plotly figure
// descriptions. Aggregation (counting, binning, quartiles) is left to the
// renderer; this package only selects columns and groups rows.
package analytics

import (
	"fmt"

	"github.com/Fe2Far/fiap-challenge4/pkg/dataset"
)

const (
	ChartLabelDistribution = "label_distribution"
	ChartAgeWeightByGender = "age_weight_by_gender"
	ChartFamilyHistory     = "family_history_impact"
	ChartActivityByLevel   = "activity_by_level"
)

// ChartIDs lists the dashboard charts in display order.
var ChartIDs = []string{
	ChartLabelDistribution,
	ChartAgeWeightByGender,
	ChartFamilyHistory,
	ChartActivityByLevel,
}

// Plotly's default qualitative palette.
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

type Chart struct {
	ID     string  `json:"id"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type       string      `json:"type"`
	Name       string      `json:"name"`
	X          interface{} `json:"x"`
	Y          interface{} `json:"y,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Opacity    float64     `json:"opacity,omitempty"`
	Marker     Marker      `json:"marker"`
	ShowLegend *bool       `json:"showlegend,omitempty"`
	Legend     string      `json:"legendgroup,omitempty"`
}

type Marker struct {
	Color string `json:"color"`
}

type Layout struct {
	Title      *Title `json:"title,omitempty"`
	XAxis      Axis   `json:"xaxis"`
	YAxis      Axis   `json:"yaxis"`
	BarMode    string `json:"barmode,omitempty"`
	BoxMode    string `json:"boxmode,omitempty"`
	ShowLegend *bool  `json:"showlegend,omitempty"`
	Legend     *Title `json:"legend,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type Axis struct {
	Title         Title    `json:"title"`
	CategoryOrder string   `json:"categoryorder,omitempty"`
	CategoryArray []string `json:"categoryarray,omitempty"`
}

// Build produces the four dashboard charts. classes is the label encoder's
// class order and fixes the category order of the label distribution.
func Build(table *dataset.Table, classes []string) ([]Chart, error) {
	builders := []func(*dataset.Table, []string) (Chart, error){
		labelDistribution,
		ageWeightByGender,
		familyHistoryImpact,
		activityByLevel,
	}
	charts := make([]Chart, 0, len(builders))
	for _, build := range builders {
		chart, err := build(table, classes)
		if err != nil {
			return nil, err
		}
		charts = append(charts, chart)
	}
	return charts, nil
}

// SetTitle attaches a localized heading to the chart.
func (c *Chart) SetTitle(text string) {
	c.Layout.Title = &Title{Text: text}
}

func labelDistribution(table *dataset.Table, classes []string) (Chart, error) {
	labels, err := table.Strings(dataset.ColumnLabel)
	if err != nil {
		return Chart{}, chartError(ChartLabelDistribution, err)
	}
	order := categoryOrder(classes, labels)
	groups := groupStrings(labels, labels)

	traces := make([]Trace, 0, len(order))
	for i, class := range order {
		traces = append(traces, Trace{
			Type:   "histogram",
			Name:   class,
			X:      nonNil(groups[class]),
			Marker: Marker{Color: color(i)},
			Legend: class,
		})
	}
	return Chart{
		ID:   ChartLabelDistribution,
		Data: traces,
		Layout: Layout{
			XAxis: Axis{
				Title:         Title{Text: dataset.ColumnLabel},
				CategoryOrder: "array",
				CategoryArray: order,
			},
			YAxis:      Axis{Title: Title{Text: "count"}},
			BarMode:    "relative",
			ShowLegend: boolPtr(false),
		},
	}, nil
}

func ageWeightByGender(table *dataset.Table, _ []string) (Chart, error) {
	genders, err := table.Strings(dataset.ColumnGender)
	if err != nil {
		return Chart{}, chartError(ChartAgeWeightByGender, err)
	}
	ages, err := table.Floats(dataset.ColumnAge)
	if err != nil {
		return Chart{}, chartError(ChartAgeWeightByGender, err)
	}
	weights, err := table.Floats(dataset.ColumnWeight)
	if err != nil {
		return Chart{}, chartError(ChartAgeWeightByGender, err)
	}

	order := distinct(genders)
	traces := make([]Trace, 0, len(order))
	for i, gender := range order {
		var x, y []float64
		for row, g := range genders {
			if g == gender {
				x = append(x, ages[row])
				y = append(y, weights[row])
			}
		}
		traces = append(traces, Trace{
			Type:    "scatter",
			Mode:    "markers",
			Name:    gender,
			X:       x,
			Y:       y,
			Opacity: 0.7,
			Marker:  Marker{Color: color(i)},
			Legend:  gender,
		})
	}
	return Chart{
		ID:   ChartAgeWeightByGender,
		Data: traces,
		Layout: Layout{
			XAxis:  Axis{Title: Title{Text: dataset.ColumnAge}},
			YAxis:  Axis{Title: Title{Text: dataset.ColumnWeight}},
			Legend: &Title{Text: dataset.ColumnGender},
		},
	}, nil
}

func familyHistoryImpact(table *dataset.Table, _ []string) (Chart, error) {
	labels, err := table.Strings(dataset.ColumnLabel)
	if err != nil {
		return Chart{}, chartError(ChartFamilyHistory, err)
	}
	history, err := table.Strings(dataset.ColumnFamilyHistory)
	if err != nil {
		return Chart{}, chartError(ChartFamilyHistory, err)
	}

	order := distinct(history)
	groups := groupStrings(history, labels)
	traces := make([]Trace, 0, len(order))
	for i, value := range order {
		traces = append(traces, Trace{
			Type:   "histogram",
			Name:   value,
			X:      groups[value],
			Marker: Marker{Color: color(i)},
			Legend: value,
		})
	}
	return Chart{
		ID:   ChartFamilyHistory,
		Data: traces,
		Layout: Layout{
			XAxis:   Axis{Title: Title{Text: dataset.ColumnLabel}},
			YAxis:   Axis{Title: Title{Text: "count"}},
			BarMode: "group",
			Legend:  &Title{Text: dataset.ColumnFamilyHistory},
		},
	}, nil
}

func activityByLevel(table *dataset.Table, _ []string) (Chart, error) {
	labels, err := table.Strings(dataset.ColumnLabel)
	if err != nil {
		return Chart{}, chartError(ChartActivityByLevel, err)
	}
	activity, err := table.Floats(dataset.ColumnFAF)
	if err != nil {
		return Chart{}, chartError(ChartActivityByLevel, err)
	}

	order := distinct(labels)
	traces := make([]Trace, 0, len(order))
	for i, label := range order {
		var x []string
		var y []float64
		for row, l := range labels {
			if l == label {
				x = append(x, l)
				y = append(y, activity[row])
			}
		}
		traces = append(traces, Trace{
			Type:   "box",
			Name:   label,
			X:      x,
			Y:      y,
			Marker: Marker{Color: color(i)},
			Legend: label,
		})
	}
	return Chart{
		ID:   ChartActivityByLevel,
		Data: traces,
		Layout: Layout{
			XAxis:      Axis{Title: Title{Text: dataset.ColumnLabel}},
			YAxis:      Axis{Title: Title{Text: dataset.ColumnFAF}},
			BoxMode:    "overlay",
			ShowLegend: boolPtr(false),
		},
	}, nil
}

// categoryOrder is the encoder order followed by any dataset labels the
// encoder does not know, in first-appearance order.
func categoryOrder(classes, labels []string) []string {
	order := make([]string, 0, len(classes))
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if !seen[c] {
			seen[c] = true
			order = append(order, c)
		}
	}
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			order = append(order, l)
		}
	}
	return order
}

func distinct(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// groupStrings collects values[i] under keys[i].
func groupStrings(keys, values []string) map[string][]string {
	groups := make(map[string][]string)
	for i, k := range keys {
		groups[k] = append(groups[k], values[i])
	}
	return groups
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func color(i int) string {
	return palette[i%len(palette)]
}

func boolPtr(b bool) *bool { return &b }

func chartError(id string, err error) error {
	return fmt.Errorf("chart %s: %w", id, err)
}
