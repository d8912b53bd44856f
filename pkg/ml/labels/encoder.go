// Package labels maps risk-level names to the integer codes a classifier emits.
package labels

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownLabel   = errors.New("unknown label")
	ErrCodeOutOfRange = errors.New("class code out of range")
	errNoClasses      = errors.New("label encoder has no classes")
)

// Encoder is immutable; Classes defines the canonical class ordering.
type Encoder struct {
	classes []string
	index   map[string]int
}

type encoderFile struct {
	Classes []string `json:"classes"`
}

func New(classes []string) (*Encoder, error) {
	if len(classes) == 0 {
		return nil, errNoClasses
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if c == "" {
			return nil, fmt.Errorf("empty class name at position %d", i)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		index[c] = i
	}
	out := make([]string, len(classes))
	copy(out, classes)
	return &Encoder{classes: out, index: index}, nil
}

// Decode reads the serialized form {"classes": [...]}.
func Decode(data []byte) (*Encoder, error) {
	var file encoderFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode label encoder: %w", err)
	}
	return New(file.Classes)
}

func (e *Encoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(encoderFile{Classes: e.classes})
}

// Classes returns a copy of the class ordering.
func (e *Encoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

func (e *Encoder) Len() int {
	return len(e.classes)
}

func (e *Encoder) Transform(label string) (int, error) {
	code, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return code, nil
}

func (e *Encoder) InverseTransform(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrCodeOutOfRange, code, len(e.classes))
	}
	return e.classes[code], nil
}
