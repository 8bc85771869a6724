package mapping

import (
	"testing"

	"github.com/tsawler/facsimile/layout"
	"github.com/tsawler/facsimile/model"
)

func rect(x, y, w, h float64) []model.Point {
	return []model.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

func helloWorld() []*model.TextRegion {
	return []*model.TextRegion{{
		ID:          "r1",
		Coordinates: rect(0, 0, 200, 100),
		Lines: []model.Line{
			{ID: "l1", Text: "Hello", Coordinates: rect(10, 10, 100, 30)},
			{ID: "l2", Text: "World", Coordinates: rect(10, 50, 100, 30)},
		},
	}}
}

// ============================================================================
// Offset Map Tests
// ============================================================================

func TestOffsetMapHelloWorld(t *testing.T) {
	m := BuildOffsetMap(helloWorld(), nil)

	if m.Total() != 12 {
		t.Fatalf("Total() = %d, want 12", m.Total())
	}

	l1, ok := m.Line("l1")
	if !ok || l1.GlobalStart != 0 || l1.Length != 5 || l1.BreakOffset() != 5 {
		t.Errorf("l1 = %+v", l1)
	}
	l2, ok := m.Line("l2")
	if !ok || l2.GlobalStart != 6 || l2.BreakOffset() != 11 {
		t.Errorf("l2 = %+v", l2)
	}

	brk, _ := m.Entry(5)
	if !brk.IsLineBreak || brk.LineID != "l1" || brk.Character != '\n' {
		t.Errorf("entry 5 = %+v, want l1 break", brk)
	}
	w, _ := m.Entry(6)
	if w.Character != 'W' || w.LineID != "l2" || w.CharIndex != 0 {
		t.Errorf("entry 6 = %+v", w)
	}
	if m.Text() != "Hello\nWorld\n" {
		t.Errorf("Text() = %q", m.Text())
	}
}

func TestOffsetMapMonotonic(t *testing.T) {
	regions := []*model.TextRegion{
		{ID: "a", Lines: []model.Line{{ID: "1", Text: "abc"}, {ID: "2", Text: ""}, {ID: "3", Text: ""}}},
		{ID: "b", Lines: []model.Line{{ID: "4", Text: "ÿß€"}}},
		{ID: "c"},
	}
	m := BuildOffsetMap(regions, nil)

	entries := m.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].GlobalOffset != entries[i-1].GlobalOffset+1 {
			t.Fatalf("entry %d offset %d does not follow %d", i, entries[i].GlobalOffset, entries[i-1].GlobalOffset)
		}
	}
	if entries[0].GlobalOffset != 0 {
		t.Errorf("first offset = %d", entries[0].GlobalOffset)
	}
	if len(entries) != m.Total() {
		t.Errorf("len(entries) = %d, Total() = %d", len(entries), m.Total())
	}
}

func TestOffsetMapLineBreakAccounting(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"a", 2},
		{"Hello", 6},
		{"Grüße", 6}, // counted in runes, not bytes
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			regions := []*model.TextRegion{{ID: "r", Lines: []model.Line{{ID: "l", Text: tt.text}}}}
			m := BuildOffsetMap(regions, nil)

			count, breaks := 0, 0
			for _, e := range m.Entries() {
				if e.LineID == "l" {
					count++
					if e.IsLineBreak {
						breaks++
					}
				}
			}
			if count != tt.want || breaks != 1 {
				t.Errorf("%q: %d entries (%d breaks), want %d entries and 1 break", tt.text, count, breaks, tt.want)
			}
		})
	}
}

func TestOffsetMapEmptyLinesStayDistinct(t *testing.T) {
	regions := []*model.TextRegion{{ID: "r", Lines: []model.Line{{ID: "e1"}, {ID: "e2"}}}}
	m := BuildOffsetMap(regions, nil)

	a, _ := m.LineAt(0)
	b, _ := m.LineAt(1)
	if a.LineID != "e1" || b.LineID != "e2" {
		t.Errorf("LineAt(0)=%s LineAt(1)=%s", a.LineID, b.LineID)
	}
}

func TestOffsetMapLineAt(t *testing.T) {
	m := BuildOffsetMap(helloWorld(), nil)

	tests := []struct {
		offset int
		want   string
		ok     bool
	}{
		{0, "l1", true},
		{4, "l1", true},
		{5, "l1", true},
		{6, "l2", true},
		{11, "l2", true},
		{12, "", false},
		{-1, "", false},
	}

	for _, tt := range tests {
		got, ok := m.LineAt(tt.offset)
		if ok != tt.ok || got.LineID != tt.want {
			t.Errorf("LineAt(%d) = %q, %v; want %q, %v", tt.offset, got.LineID, ok, tt.want, tt.ok)
		}
	}
}

func TestOffsetMapRecordsPositions(t *testing.T) {
	metrics := &layout.PanelLayout{Lines: map[string]layout.LineMetrics{
		"l1": {Top: 16, Height: 24, Rows: 1},
		"l2": {Top: 40, Height: 24, Rows: 1},
	}}
	m := BuildOffsetMap(helloWorld(), metrics)

	l2, _ := m.Line("l2")
	if l2.RenderTop != 40 || l2.RenderHeight != 24 {
		t.Errorf("render metrics = %v/%v", l2.RenderTop, l2.RenderHeight)
	}
	if l2.LineBox != model.NewBBox(10, 50, 100, 30) {
		t.Errorf("LineBox = %+v", l2.LineBox)
	}
	if l2.RegionBox != model.NewBBox(0, 0, 200, 100) {
		t.Errorf("RegionBox = %+v", l2.RegionBox)
	}
	if _, ok := m.Line("missing"); ok {
		t.Error("Line(missing) should not be found")
	}
}

// ============================================================================
// Position Map Tests
// ============================================================================

func TestPositionMap(t *testing.T) {
	metrics := &layout.PanelLayout{Lines: map[string]layout.LineMetrics{
		"l1": {Top: 0, Height: 20},
		"l2": {Top: 20, Height: 40},
	}}
	pm := BuildPositionMap(helloWorld(), metrics)

	if pm.Len() != 2 {
		t.Fatalf("Len() = %d", pm.Len())
	}
	e, ok := pm.Entry("l2")
	if !ok || e.ImageBBox != model.NewBBox(10, 50, 100, 30) || e.RenderTop != 20 || e.RenderHeight != 40 {
		t.Errorf("Entry(l2) = %+v", e)
	}
	if e.RenderCenter() != 40 {
		t.Errorf("RenderCenter() = %v", e.RenderCenter())
	}
}

func TestPositionMapGenerations(t *testing.T) {
	a := BuildPositionMap(helloWorld(), nil)
	b := BuildPositionMap(helloWorld(), nil)
	if a.Generation() == b.Generation() {
		t.Error("each build should have a distinct generation")
	}
	var nilMap *PositionMap
	if nilMap.Len() != 0 || nilMap.Generation() != 0 {
		t.Error("nil map should be empty")
	}
}

func TestPositionMapNearest(t *testing.T) {
	metrics := &layout.PanelLayout{Lines: map[string]layout.LineMetrics{
		"l1": {Top: 0, Height: 20},
		"l2": {Top: 20, Height: 20},
	}}
	pm := BuildPositionMap(helloWorld(), metrics)

	if e, _ := pm.NearestToPoint(model.Point{X: 60, Y: 20}); e.LineID != "l1" {
		t.Errorf("NearestToPoint near l1 = %s", e.LineID)
	}
	if e, _ := pm.NearestToPoint(model.Point{X: 500, Y: 90}); e.LineID != "l2" {
		t.Errorf("NearestToPoint near l2 = %s", e.LineID)
	}
	if e, _ := pm.NearestToRenderY(28); e.LineID != "l2" {
		t.Errorf("NearestToRenderY(28) = %s", e.LineID)
	}

	empty := BuildPositionMap(nil, nil)
	if _, ok := empty.NearestToPoint(model.Point{}); ok {
		t.Error("empty map should have no nearest line")
	}
	if _, ok := empty.NearestToRenderY(0); ok {
		t.Error("empty map should have no nearest line")
	}
}
