package facsimile

import (
	"fmt"
	"strings"
)

// WarningSource identifies the stage that produced a warning
type WarningSource string

const (
	WarnDocument     WarningSource = "document"
	WarnReadingOrder WarningSource = "reading-order"
	WarnAnnotation   WarningSource = "annotation"
)

// Warning is a non-fatal problem found while loading a document or
// applying annotations. The affected item was skipped or repaired.
type Warning struct {
	Source  WarningSource
	Message string
}

// String returns the warning as "source: message"
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Source, w.Message)
}

// FormatWarnings joins warnings one per line
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

func toWarnings(source WarningSource, messages []string) []Warning {
	if len(messages) == 0 {
		return nil
	}
	out := make([]Warning, len(messages))
	for i, m := range messages {
		out[i] = Warning{Source: source, Message: m}
	}
	return out
}
