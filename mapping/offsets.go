package mapping

import (
	"sort"

	"github.com/tsawler/facsimile/layout"
	"github.com/tsawler/facsimile/model"
)

// CharacterOffsetEntry assigns one character, or the synthetic break that
// ends a line, its position in the linearized document.
type CharacterOffsetEntry struct {
	RegionID     string
	LineID       string
	CharIndex    int  // rune index within the line; equals the line length for the break
	Character    rune // '\n' for the break entry
	GlobalOffset int
	IsLineBreak  bool
}

// LineSpan is the per-line record of the offset map: the range of global
// offsets the line owns plus its image-space and panel positions.
type LineSpan struct {
	RegionID     string
	LineID       string
	Text         string
	GlobalStart  int // offset of the first character
	Length       int // rune count, excluding the break
	LineBox      model.BBox
	RegionBox    model.BBox
	RenderTop    float64
	RenderHeight float64
}

// BreakOffset returns the offset of the line's synthetic break entry
func (s LineSpan) BreakOffset() int { return s.GlobalStart + s.Length }

// End returns the first offset past the line, break included
func (s LineSpan) End() int { return s.GlobalStart + s.Length + 1 }

// Contains reports whether offset belongs to the line, break included
func (s LineSpan) Contains(offset int) bool {
	return offset >= s.GlobalStart && offset < s.End()
}

// OffsetMap is the per-character index of a document in reading order.
// It is built once per document load and never patched.
type OffsetMap struct {
	entries []CharacterOffsetEntry
	lines   []LineSpan
	byLine  map[string]int
	total   int
}

// BuildOffsetMap walks regions in reading order and assigns every character
// a global offset, emitting one extra break entry after each line so that a
// line of length L consumes L+1 offsets, even when L is zero. Metrics may be
// nil when the panel has not been laid out.
func BuildOffsetMap(regions []*model.TextRegion, metrics *layout.PanelLayout) *OffsetMap {
	m := &OffsetMap{byLine: make(map[string]int)}

	offset := 0
	for _, region := range regions {
		regionBox := region.BBox()
		for i := range region.Lines {
			line := &region.Lines[i]
			runes := []rune(line.Text)

			span := LineSpan{
				RegionID:    region.ID,
				LineID:      line.ID,
				Text:        line.Text,
				GlobalStart: offset,
				Length:      len(runes),
				LineBox:     line.BBox(),
				RegionBox:   regionBox,
			}
			if metrics != nil {
				if lm, ok := metrics.Lines[line.ID]; ok {
					span.RenderTop = lm.Top
					span.RenderHeight = lm.Height
				}
			}

			for ci, ch := range runes {
				m.entries = append(m.entries, CharacterOffsetEntry{
					RegionID:     region.ID,
					LineID:       line.ID,
					CharIndex:    ci,
					Character:    ch,
					GlobalOffset: offset + ci,
				})
			}
			m.entries = append(m.entries, CharacterOffsetEntry{
				RegionID:     region.ID,
				LineID:       line.ID,
				CharIndex:    len(runes),
				Character:    '\n',
				GlobalOffset: offset + len(runes),
				IsLineBreak:  true,
			})

			if _, dup := m.byLine[line.ID]; !dup {
				m.byLine[line.ID] = len(m.lines)
			}
			m.lines = append(m.lines, span)
			offset += len(runes) + 1
		}
	}

	m.total = offset
	return m
}

// Total returns the number of offsets in the document, breaks included
func (m *OffsetMap) Total() int { return m.total }

// Entries returns every character entry in offset order
func (m *OffsetMap) Entries() []CharacterOffsetEntry { return m.entries }

// Lines returns the line spans in reading order
func (m *OffsetMap) Lines() []LineSpan { return m.lines }

// Line returns the span for a line id
func (m *OffsetMap) Line(id string) (LineSpan, bool) {
	i, ok := m.byLine[id]
	if !ok {
		return LineSpan{}, false
	}
	return m.lines[i], true
}

// LineIndexAt returns the index into Lines of the line owning offset
func (m *OffsetMap) LineIndexAt(offset int) (int, bool) {
	if offset < 0 || offset >= m.total {
		return 0, false
	}
	i := sort.Search(len(m.lines), func(i int) bool {
		return m.lines[i].End() > offset
	})
	if i == len(m.lines) {
		return 0, false
	}
	return i, true
}

// LineAt returns the line owning offset, break included
func (m *OffsetMap) LineAt(offset int) (LineSpan, bool) {
	i, ok := m.LineIndexAt(offset)
	if !ok {
		return LineSpan{}, false
	}
	return m.lines[i], true
}

// Entry returns the entry at offset
func (m *OffsetMap) Entry(offset int) (CharacterOffsetEntry, bool) {
	if offset < 0 || offset >= len(m.entries) {
		return CharacterOffsetEntry{}, false
	}
	return m.entries[offset], true
}

// Text returns the linearized document text, one line per row
func (m *OffsetMap) Text() string {
	runes := make([]rune, len(m.entries))
	for i, e := range m.entries {
		runes[i] = e.Character
	}
	return string(runes)
}
