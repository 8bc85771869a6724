package model

import "fmt"

// Clone returns a deep copy of the document. Polygons, lines and words are
// copied, so the clone can be rescaled or renamed without touching d.
func (d *Document) Clone() *Document {
	c := *d
	c.ReadingOrder = append([]string(nil), d.ReadingOrder...)
	c.Regions = make([]TextRegion, len(d.Regions))
	for i, r := range d.Regions {
		r.Coordinates = clonePoints(r.Coordinates)
		lines := make([]Line, len(r.Lines))
		for j, l := range r.Lines {
			l.Coordinates = clonePoints(l.Coordinates)
			l.Baseline = clonePoints(l.Baseline)
			words := make([]Word, len(l.Words))
			for k, w := range l.Words {
				w.Coordinates = clonePoints(w.Coordinates)
				words[k] = w
			}
			l.Words = words
			lines[j] = l
		}
		r.Lines = lines
		c.Regions[i] = r
	}
	return &c
}

func clonePoints(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	return append([]Point(nil), pts...)
}

// ScaleCoordinates maps every polygon, baseline and word from page
// coordinates to another raster, such as a downscaled derivative of the
// scan, and updates the declared page size to match.
func (d *Document) ScaleCoordinates(sx, sy float64) {
	scale := func(pts []Point) {
		for i := range pts {
			pts[i] = pts[i].Scale(sx, sy)
		}
	}
	for i := range d.Regions {
		r := &d.Regions[i]
		scale(r.Coordinates)
		for j := range r.Lines {
			l := &r.Lines[j]
			scale(l.Coordinates)
			scale(l.Baseline)
			for k := range l.Words {
				scale(l.Words[k].Coordinates)
			}
		}
	}
	d.Page.Width = int(float64(d.Page.Width)*sx + 0.5)
	d.Page.Height = int(float64(d.Page.Height)*sy + 0.5)
}

// UniqueIDs renames regions and lines so that no id is empty or used twice.
// The first holder of an id keeps it; later ones get a numeric suffix, and
// empty ids are numbered by position. It returns one message per rename.
func (d *Document) UniqueIDs() []string {
	var msgs []string

	regions := make(map[string]bool, len(d.Regions))
	lines := make(map[string]bool, d.LineCount())
	n := 0
	for i := range d.Regions {
		r := &d.Regions[i]
		if id := claim(regions, r.ID, fmt.Sprintf("region_%d", i)); id != r.ID {
			msgs = append(msgs, renamed("region", r.ID, id))
			r.ID = id
		}
		for j := range r.Lines {
			l := &r.Lines[j]
			if id := claim(lines, l.ID, fmt.Sprintf("line_%d", n)); id != l.ID {
				msgs = append(msgs, renamed("line", l.ID, id))
				l.ID = id
			}
			n++
		}
	}
	return msgs
}

// claim reserves id in taken, or the first free variant of it
func claim(taken map[string]bool, id, fallback string) string {
	base := id
	if base == "" {
		base = fallback
	}
	candidate := base
	for k := 2; taken[candidate]; k++ {
		candidate = fmt.Sprintf("%s_%d", base, k)
	}
	taken[candidate] = true
	return candidate
}

func renamed(kind, from, to string) string {
	if from == "" {
		return fmt.Sprintf("%s without id named %q", kind, to)
	}
	return fmt.Sprintf("%s id %q is not unique, renamed to %q", kind, from, to)
}
