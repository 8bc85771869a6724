package mapping

import (
	"sync/atomic"

	"github.com/tsawler/facsimile/layout"
	"github.com/tsawler/facsimile/model"
)

// PositionMapEntry ties a line's image-space box to its rendered position
// in the text panel.
type PositionMapEntry struct {
	LineID       string
	ImageBBox    model.BBox
	RenderTop    float64
	RenderHeight float64
}

// RenderCenter returns the vertical center of the line in the text panel
func (e PositionMapEntry) RenderCenter() float64 {
	return e.RenderTop + e.RenderHeight/2
}

var generations atomic.Uint64

// PositionMap indexes every line of a document by id. Consumers treat a
// map as replaced wholesale on every document load or layout change; the
// generation number identifies one build.
type PositionMap struct {
	entries    []PositionMapEntry
	byLine     map[string]int
	generation uint64
}

// BuildPositionMap records, in reading order, every line's bounding box and
// panel metrics. Lines missing from metrics get a zero render position.
func BuildPositionMap(regions []*model.TextRegion, metrics *layout.PanelLayout) *PositionMap {
	pm := &PositionMap{
		byLine:     make(map[string]int),
		generation: generations.Add(1),
	}
	for _, region := range regions {
		for i := range region.Lines {
			line := &region.Lines[i]
			entry := PositionMapEntry{
				LineID:    line.ID,
				ImageBBox: line.BBox(),
			}
			if metrics != nil {
				if lm, ok := metrics.Lines[line.ID]; ok {
					entry.RenderTop = lm.Top
					entry.RenderHeight = lm.Height
				}
			}
			if _, dup := pm.byLine[line.ID]; !dup {
				pm.byLine[line.ID] = len(pm.entries)
			}
			pm.entries = append(pm.entries, entry)
		}
	}
	return pm
}

// Entries returns the entries in reading order
func (pm *PositionMap) Entries() []PositionMapEntry {
	if pm == nil {
		return nil
	}
	return pm.entries
}

// Entry returns the entry for a line id
func (pm *PositionMap) Entry(lineID string) (PositionMapEntry, bool) {
	if pm == nil {
		return PositionMapEntry{}, false
	}
	i, ok := pm.byLine[lineID]
	if !ok {
		return PositionMapEntry{}, false
	}
	return pm.entries[i], true
}

// Len returns the number of entries
func (pm *PositionMap) Len() int {
	if pm == nil {
		return 0
	}
	return len(pm.entries)
}

// Generation identifies this build; every build gets a new value
func (pm *PositionMap) Generation() uint64 {
	if pm == nil {
		return 0
	}
	return pm.generation
}

// NearestToPoint returns the entry whose image box center is closest to p.
// The scan is linear in the number of lines.
func (pm *PositionMap) NearestToPoint(p model.Point) (PositionMapEntry, bool) {
	best, bestDist := -1, 0.0
	for i, e := range pm.Entries() {
		d := e.ImageBBox.Center().Distance(p)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return PositionMapEntry{}, false
	}
	return pm.entries[best], true
}

// NearestToRenderY returns the entry whose rendered center is vertically
// closest to y.
func (pm *PositionMap) NearestToRenderY(y float64) (PositionMapEntry, bool) {
	best, bestDist := -1, 0.0
	for i, e := range pm.Entries() {
		d := e.RenderCenter() - y
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return PositionMapEntry{}, false
	}
	return pm.entries[best], true
}
