package transcript

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// RenderedLine is one line container found in a rendered panel
type RenderedLine struct {
	LineID   string
	RegionID string
	Text     string
	Active   bool
	SpanIDs  []string // annotation spans inside the line, document order
}

// ReadLines parses a rendered panel and returns its lines in document
// order. Text is the concatenated text content of each line, which equals
// the line's original text regardless of the annotations applied.
func ReadLines(r io.Reader) ([]RenderedLine, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}

	var lines []RenderedLine
	var walk func(n *html.Node, regionID string)
	walk = func(n *html.Node, regionID string) {
		if n.Type == html.ElementNode && n.Data == "div" {
			if hasClass(n, RegionClass) {
				regionID = attr(n, "data-region-id")
			}
			if hasClass(n, LineClass) {
				line := RenderedLine{
					LineID:   attr(n, "data-line-id"),
					RegionID: regionID,
					Active:   hasClass(n, ActiveClass),
				}
				var sb strings.Builder
				collect(n, &sb, &line.SpanIDs)
				line.Text = sb.String()
				lines = append(lines, line)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, regionID)
		}
	}
	walk(doc, "")
	return lines, nil
}

func collect(n *html.Node, sb *strings.Builder, spans *[]string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			if c.Data == "span" && hasClass(c, AnnotationClass) {
				*spans = append(*spans, attr(c, "data-span-id"))
			}
			collect(c, sb, spans)
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
