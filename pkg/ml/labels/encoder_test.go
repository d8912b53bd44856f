package labels

import (
	"encoding/json"
	"errors"
	"testing"
)

var obesityClasses = []string{
	"Insufficient_Weight",
	"Normal_Weight",
	"Obesity_Type_I",
	"Obesity_Type_II",
	"Obesity_Type_III",
	"Overweight_Level_I",
	"Overweight_Level_II",
}

func TestRoundTripEveryCode(t *testing.T) {
	enc, err := New(obesityClasses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for code := 0; code < enc.Len(); code++ {
		label, err := enc.InverseTransform(code)
		if err != nil {
			t.Fatalf("decode %d: %v", code, err)
		}
		back, err := enc.Transform(label)
		if err != nil {
			t.Fatalf("encode %s: %v", label, err)
		}
		if back != code {
			t.Fatalf("round trip %d -> %s -> %d", code, label, back)
		}
	}
}

func TestInverseTransformOutOfRange(t *testing.T) {
	enc, _ := New(obesityClasses)
	for _, code := range []int{-1, len(obesityClasses)} {
		if _, err := enc.InverseTransform(code); !errors.Is(err, ErrCodeOutOfRange) {
			t.Fatalf("code %d: expected ErrCodeOutOfRange, got %v", code, err)
		}
	}
}

func TestTransformUnknownLabel(t *testing.T) {
	enc, _ := New(obesityClasses)
	if _, err := enc.Transform("Obesity_Type_IV"); !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}
}

func TestDecodeKeepsOrder(t *testing.T) {
	enc, err := Decode([]byte(`{"classes":["Normal_Weight","Overweight_Level_I","Obesity_Type_I"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	classes := enc.Classes()
	if classes[0] != "Normal_Weight" || classes[2] != "Obesity_Type_I" {
		t.Fatalf("order not preserved: %v", classes)
	}
	classes[0] = "mutated"
	if enc.Classes()[0] != "Normal_Weight" {
		t.Fatal("Classes must return a copy")
	}
}

func TestNewRejectsBadClassLists(t *testing.T) {
	cases := map[string][]string{
		"empty":     nil,
		"duplicate": {"a", "a"},
		"blank":     {"a", ""},
	}
	for name, classes := range cases {
		if _, err := New(classes); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDecodeRejectsCorruptPayload(t *testing.T) {
	if _, err := Decode([]byte("\x80\x04pickle")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestMarshalMatchesArtifactFormat(t *testing.T) {
	enc, err := New([]string{"Overweight_Level_I", "Normal_Weight"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(enc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"classes":["Overweight_Level_I","Normal_Weight"]}` {
		t.Fatalf("unexpected payload %s", data)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code, _ := back.Transform("Normal_Weight"); code != 1 {
		t.Fatalf("expected Normal_Weight at 1, got %d", code)
	}
}
