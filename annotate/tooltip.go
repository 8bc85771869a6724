package annotate

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsawler/facsimile/highlight"
	"github.com/tsawler/facsimile/model"
)

// TooltipBuilder renders the tooltip content of an annotation. The
// description metadata is treated as Markdown; raw HTML in it is not
// passed through.
type TooltipBuilder struct {
	md   goldmark.Markdown
	lang language.Tag
}

// NewTooltipBuilder creates a builder that upper-cases headers according
// to lang (language.Und for language-neutral casing).
func NewTooltipBuilder(lang language.Tag) *TooltipBuilder {
	return &TooltipBuilder{md: goldmark.New(), lang: lang}
}

// Build returns the tooltip for ann
func (b *TooltipBuilder) Build(ann model.Annotation) highlight.Tooltip {
	// Casers keep state and are created per call.
	upper := cases.Upper(b.lang)

	return highlight.Tooltip{
		Type:            ann.Type,
		Subtype:         ann.Subtype,
		Header:          upper.String(ann.Type) + ": " + ann.Subtype,
		Category:        Category(ann.Type, ann.Subtype),
		DescriptionHTML: b.description(ann.Description()),
	}
}

func (b *TooltipBuilder) description(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := b.md.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return strings.TrimSpace(buf.String())
}

// Category returns the human-readable category line for well-known
// annotation types, or "" for others.
func Category(typ, subtype string) string {
	switch typ {
	case "ner":
		return "Named Entity: " + subtype
	case "pos":
		return "Part of Speech: " + subtype
	case "morph":
		return "Morphological Analysis"
	default:
		return ""
	}
}
