package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// Annotation tags the half-open character range [Start, End) of the
// linearized transcription with a type, a subtype and free-form metadata.
type Annotation struct {
	Start    int               `json:"start"`
	End      int               `json:"end"`
	Type     string            `json:"type"`
	Subtype  string            `json:"subtype"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Len returns the number of offsets covered by the annotation
func (a Annotation) Len() int { return a.End - a.Start }

// Description returns the "description" metadata value, if any
func (a Annotation) Description() string { return a.Metadata["description"] }

// AnnotationSet is the payload supplied by the annotation collaborator
// for one document.
type AnnotationSet struct {
	Annotations []Annotation `json:"annotations"`
}

// ReadAnnotations decodes an AnnotationSet from JSON
func ReadAnnotations(r io.Reader) ([]Annotation, error) {
	var set AnnotationSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode annotations: %w", err)
	}
	return set.Annotations, nil
}
