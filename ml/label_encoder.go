package ml

import (
	"errors"
	"fmt"
)

// LabelEncoder decodes label i to classes[i].
type LabelEncoder struct {
	classes []string
}

// NewLabelEncoder rejects empty and duplicate class lists.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("label_encoder: no classes")
	}
	seen := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("label_encoder: duplicate class %q", c)
		}
		seen[c] = struct{}{}
	}
	return &LabelEncoder{classes: classes}, nil
}

func (e *LabelEncoder) InverseTransform(label int) (string, error) {
	if label < 0 || label >= len(e.classes) {
		return "", fmt.Errorf("label_encoder: label %d not in [0,%d)", label, len(e.classes))
	}
	return e.classes[label], nil
}

func (e *LabelEncoder) Labels() []string {
	return e.classes
}
