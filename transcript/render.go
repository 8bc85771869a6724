package transcript

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsawler/facsimile/annotate"
	"github.com/tsawler/facsimile/model"
)

// Class names of the rendered panel
const (
	RegionClass     = "transcription-region"
	LineClass       = "transcription-line"
	ActiveClass     = "active"
	AnnotationClass = "annotation"
)

// Options controls what Build adds on top of the base transcription
type Options struct {
	// Markup holds the annotated lines by line id; other lines render as
	// plain text.
	Markup map[string]*annotate.LineMarkup

	// Registry supplies the annotation metadata written to span attributes.
	Registry *annotate.Registry

	// ActiveLine gets the active class.
	ActiveLine string
}

// Build creates the transcription panel as an HTML node tree: one region
// container per region in the given order, one line container per line.
func Build(regions []*model.TextRegion, opts Options) *html.Node {
	root := element(atom.Div, "transcription")
	for _, region := range regions {
		rdiv := element(atom.Div, RegionClass)
		setAttr(rdiv, "data-region-id", region.ID)
		if region.Type != "" {
			setAttr(rdiv, "data-region-type", region.Type)
		}
		for i := range region.Lines {
			rdiv.AppendChild(buildLine(&region.Lines[i], opts))
		}
		root.AppendChild(rdiv)
	}
	return root
}

// Render builds the panel and serializes it
func Render(regions []*model.TextRegion, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, Build(regions, opts)); err != nil {
		return "", fmt.Errorf("rendering transcript: %w", err)
	}
	return buf.String(), nil
}

func buildLine(line *model.Line, opts Options) *html.Node {
	class := LineClass
	if opts.ActiveLine != "" && line.ID == opts.ActiveLine {
		class += " " + ActiveClass
	}
	ldiv := element(atom.Div, class)
	setAttr(ldiv, "data-line-id", line.ID)

	// markup cut from another line's text is not applied
	markup, ok := opts.Markup[line.ID]
	if !ok || len(markup.Segments) == 0 || markup.Text != line.Text {
		if line.Text != "" {
			ldiv.AppendChild(text(line.Text))
		}
		return ldiv
	}

	for _, seg := range markup.Segments {
		ldiv.AppendChild(buildSegment(seg, opts.Registry))
	}
	return ldiv
}

// buildSegment nests one span per covering annotation, outermost first,
// around the segment text.
func buildSegment(seg annotate.Segment, reg *annotate.Registry) *html.Node {
	if len(seg.Layers) == 0 {
		return text(seg.Text)
	}

	var outer, inner *html.Node
	for _, spanID := range seg.Layers {
		span := buildSpan(spanID, reg)
		if outer == nil {
			outer = span
		} else {
			inner.AppendChild(span)
		}
		inner = span
	}
	inner.AppendChild(text(seg.Text))
	return outer
}

func buildSpan(spanID string, reg *annotate.Registry) *html.Node {
	entry, ok := reg.Lookup(spanID)
	if !ok {
		span := element(atom.Span, AnnotationClass)
		setAttr(span, "data-span-id", spanID)
		return span
	}

	ann := entry.Annotation
	span := element(atom.Span, AnnotationClass+" "+ClassName(ann.Type, ann.Subtype))
	setAttr(span, "data-span-id", spanID)
	setAttr(span, "data-type", ann.Type)
	setAttr(span, "data-subtype", ann.Subtype)

	keys := make([]string, 0, len(ann.Metadata))
	for k := range ann.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := attrName(k)
		if name == "" || name == "span-id" || name == "type" || name == "subtype" {
			continue
		}
		setAttr(span, "data-"+name, ann.Metadata[k])
	}
	return span
}

// ClassName returns the style class of an annotation type and subtype,
// e.g. "ner-person".
func ClassName(typ, subtype string) string {
	return ident(typ) + "-" + ident(subtype)
}

// ident lowercases s and replaces anything that is not a letter, mark,
// digit, hyphen or underscore with a hyphen. Non-Latin scripts are kept.
func ident(s string) string {
	return strings.Map(func(r rune) rune {
		if identRune(r) {
			return r
		}
		return '-'
	}, cases.Lower(language.Und).String(s))
}

// attrName turns a metadata key into a data attribute suffix. camelCase
// keys become kebab-case.
func attrName(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
		case identRune(r):
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(cases.Lower(language.Und).String(b.String()), "-")
}

func identRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		setAttr(n, "class", class)
	}
	return n
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
