package model

// Document is a parsed single-page transcription: the page image
// description, its text regions and the reading order over them.
// It is owned by the parser and treated as immutable for one load.
type Document struct {
	Metadata     Metadata
	Page         Page
	Regions      []TextRegion
	ReadingOrder []string // region ids; empty means "derive from geometry"
}

// Metadata contains document-level information
type Metadata struct {
	Creator      string
	Created      string
	LastModified string
	Status       string
}

// Page describes the facsimile image the transcription belongs to
type Page struct {
	ImageFilename string
	Width         int // intrinsic image width in pixels, 0 if unknown
	Height        int
}

// TextRegion is a structural block of transcribed text (paragraph, heading, ...)
type TextRegion struct {
	ID          string
	Type        string
	Coordinates []Point
	Text        string
	Lines       []Line
}

// BBox returns the bounding box of the region polygon. A region without
// a polygon falls back to the union of its line boxes.
func (r *TextRegion) BBox() BBox {
	if len(r.Coordinates) > 0 {
		return BoundingBox(r.Coordinates)
	}
	var box BBox
	for i := range r.Lines {
		box = box.Union(r.Lines[i].BBox())
	}
	return box
}

// Line is a single transcribed text line, child of exactly one region
type Line struct {
	ID          string
	Coordinates []Point
	Baseline    []Point
	Text        string
	Words       []Word
}

// BBox returns the bounding box of the line polygon
func (l *Line) BBox() BBox { return BoundingBox(l.Coordinates) }

// Word is a positioned word inside a line
type Word struct {
	ID          string
	Coordinates []Point
	Text        string
}

// Region returns the region with the given id, or nil
func (d *Document) Region(id string) *TextRegion {
	for i := range d.Regions {
		if d.Regions[i].ID == id {
			return &d.Regions[i]
		}
	}
	return nil
}

// Line returns the line with the given id and its owning region, or nils
func (d *Document) Line(id string) (*Line, *TextRegion) {
	for i := range d.Regions {
		r := &d.Regions[i]
		for j := range r.Lines {
			if r.Lines[j].ID == id {
				return &r.Lines[j], r
			}
		}
	}
	return nil, nil
}

// LineCount returns the number of lines across all regions
func (d *Document) LineCount() int {
	n := 0
	for _, r := range d.Regions {
		n += len(r.Lines)
	}
	return n
}
