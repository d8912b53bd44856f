package dataset

import (
	"errors"
	"strings"
	"testing"
)

const sample = "\ufeffGender, Age,Obesity\nFemale,21,Normal_Weight\nMale,23,Obesity_Type_I\nFemale,27.5,Normal_Weight\n"

func TestParseReadsHeaderAndRows(t *testing.T) {
	table, err := Parse(strings.NewReader(sample), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Columns(); len(got) != 3 || got[0] != "Gender" || got[1] != "Age" {
		t.Fatalf("unexpected header %v", got)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}

	ages, err := table.Floats("Age")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ages[2] != 27.5 {
		t.Fatalf("expected 27.5, got %v", ages[2])
	}

	labels, _ := table.Distinct("Obesity")
	if len(labels) != 2 || labels[0] != "Normal_Weight" || labels[1] != "Obesity_Type_I" {
		t.Fatalf("expected first-appearance order, got %v", labels)
	}
}

func TestParseRejectsRaggedRows(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b\n1,2\n3\n"), ',')
	if err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestParseRejectsEmptyInput(t *testing.T) {
	if _, err := Parse(strings.NewReader(""), ','); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestUnknownColumn(t *testing.T) {
	table, _ := Parse(strings.NewReader(sample), ',')
	_, err := table.Strings("Weight")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestFloatsReportsBadCell(t *testing.T) {
	table, _ := Parse(strings.NewReader("Age\nabc\n"), ',')
	if _, err := table.Floats("Age"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateListsMissingColumns(t *testing.T) {
	table, _ := Parse(strings.NewReader(sample), ',')
	err := table.Validate([]string{"Gender", "Weight", "FAF"})
	if err == nil || !strings.Contains(err.Error(), "Weight, FAF") {
		t.Fatalf("expected missing Weight and FAF, got %v", err)
	}
}

func TestParseTSVByExtension(t *testing.T) {
	delim := DelimiterFor("data/Obesity.TSV")
	if delim != '\t' {
		t.Fatalf("expected tab delimiter, got %q", delim)
	}
	if DelimiterFor("data/Obesity.csv") != ',' {
		t.Fatal("expected comma delimiter for csv")
	}
	table, err := Parse(strings.NewReader("Age\tObesity\n30\tNormal_Weight\n"), delim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.HasColumn("Obesity") || table.Len() != 1 {
		t.Fatalf("unexpected table %v", table.Columns())
	}
}
