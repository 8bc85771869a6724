package layout

import (
	"strings"

	"github.com/tsawler/facsimile/model"
)

// TextPanel describes the transcription panel the lines are rendered into.
// All values are in panel pixels.
type TextPanel struct {
	// Width is the panel width available to text, before padding
	Width float64

	// Padding is applied on every side of the panel
	Padding float64

	// LineSpacing multiplies the measurer's row height
	// Default: 1.5
	LineSpacing float64

	// RegionGap is the vertical space inserted between two regions
	RegionGap float64
}

// DefaultTextPanel returns sensible default configuration
func DefaultTextPanel() TextPanel {
	return TextPanel{
		Width:       480,
		Padding:     16,
		LineSpacing: 1.5,
		RegionGap:   12,
	}
}

// LineMetrics is the rendered position of one transcription line
type LineMetrics struct {
	Top    float64 // offset of the line box from the panel top
	Height float64
	Rows   int // visual rows after wrapping, at least 1
}

// Center returns the vertical center of the rendered line
func (m LineMetrics) Center() float64 {
	return m.Top + m.Height/2
}

// PanelLayout is the result of laying out every line of a document
type PanelLayout struct {
	Lines         map[string]LineMetrics
	ContentHeight float64
}

// Layout lays out the lines of regions, in the given order, and returns the
// position of every line. Lines wrap greedily at spaces; a word wider than
// the panel occupies a row of its own, and an empty line is one row tall.
func (p TextPanel) Layout(regions []*model.TextRegion, m Measurer) *PanelLayout {
	result := &PanelLayout{Lines: make(map[string]LineMetrics)}

	spacing := p.LineSpacing
	if spacing <= 0 {
		spacing = 1
	}
	rowHeight := m.LineHeight() * spacing
	avail := p.Width - 2*p.Padding

	y := p.Padding
	for i, region := range regions {
		if i > 0 {
			y += p.RegionGap
		}
		for _, line := range region.Lines {
			rows := countRows(line.Text, avail, m)
			metrics := LineMetrics{
				Top:    y,
				Height: float64(rows) * rowHeight,
				Rows:   rows,
			}
			result.Lines[line.ID] = metrics
			y += metrics.Height
		}
	}

	result.ContentHeight = y + p.Padding
	return result
}

// countRows returns the number of rows text occupies at the given width.
// A non-positive width disables wrapping.
func countRows(text string, width float64, m Measurer) int {
	words := strings.Fields(text)
	if len(words) == 0 || width <= 0 {
		return 1
	}

	space := m.Advance(" ")
	rows := 1
	used := 0.0
	for _, w := range words {
		adv := m.Advance(w)
		switch {
		case used == 0:
			used = adv
		case used+space+adv <= width:
			used += space + adv
		default:
			rows++
			used = adv
		}
	}
	return rows
}
