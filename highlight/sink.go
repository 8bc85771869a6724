package highlight

import "github.com/tsawler/facsimile/model"

// Kind selects the visual style of a highlight
type Kind int

const (
	// Region outlines a whole text region
	Region Kind = iota
	// Line outlines a single line
	Line
	// Active marks the one line currently in focus, with a pulsing indicator
	Active
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case Region:
		return "region"
	case Line:
		return "line"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Tooltip is the content drawn next to an annotation span on hover
type Tooltip struct {
	SpanID   string
	LineID   string
	Type     string
	Subtype  string
	Header   string // e.g. "POS: noun"
	Category string // e.g. "Part of Speech: noun"
	// DescriptionHTML is the rendered description metadata, empty if none
	DescriptionHTML string
}

// Sink receives highlight requests. It owns no business state and always
// reflects the most recent call; requests are fire-and-forget.
type Sink interface {
	Show(kind Kind, id string, box model.BBox)
	Hide(kind Kind, id string)
	HideAll()
	ShowTooltip(tip Tooltip)
	HideTooltip()
}

// Nop is a Sink that ignores every request
type Nop struct{}

func (Nop) Show(Kind, string, model.BBox) {}
func (Nop) Hide(Kind, string)             {}
func (Nop) HideAll()                      {}
func (Nop) ShowTooltip(Tooltip)           {}
func (Nop) HideTooltip()                  {}
