package model

import (
	"math"
	"strconv"
	"strings"
)

// Point represents a 2D point in image space (pixels, Y grows downward)
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Scale maps the point by independent horizontal and vertical factors
func (p Point) Scale(sx, sy float64) Point {
	return Point{X: p.X * sx, Y: p.Y * sy}
}

// BBox represents an axis-aligned bounding box in image space.
// A BBox is always derived from a polygon and never stored as ground truth.
type BBox struct {
	X      float64 // Left
	Y      float64 // Top (image coordinate system)
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// BoundingBox returns the smallest axis-aligned box enclosing points.
// An empty polygon yields the zero box; regions without polygon data
// are common and are not an error.
func BoundingBox(points []Point) BBox {
	if len(points) == 0 {
		return BBox{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ParsePoints parses a polygon in the "x,y x,y ..." notation used by PAGE XML.
// Malformed pairs are skipped.
func ParsePoints(s string) []Point {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}

	points := make([]Point, 0, len(fields))
	for _, pair := range fields {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			continue
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			continue
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			continue
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y + b.Height
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// Intersects reports whether two boxes overlap or touch
func (b BBox) Intersects(other BBox) bool {
	return !(b.Right() < other.Left() ||
		b.Left() > other.Right() ||
		b.Bottom() < other.Top() ||
		b.Top() > other.Bottom())
}

// Union returns the smallest box enclosing both boxes. An empty box
// contributes nothing.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	x := math.Min(b.Left(), other.Left())
	y := math.Min(b.Top(), other.Top())
	right := math.Max(b.Right(), other.Right())
	bottom := math.Max(b.Bottom(), other.Bottom())

	return BBox{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// Scale multiplies every coordinate by factor, mapping image space to a
// zoomed viewport.
func (b BBox) Scale(factor float64) BBox {
	return BBox{
		X:      b.X * factor,
		Y:      b.Y * factor,
		Width:  b.Width * factor,
		Height: b.Height * factor,
	}
}

// Expand expands the bounding box by a margin on all sides
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X:      b.X - margin,
		Y:      b.Y - margin,
		Width:  b.Width + 2*margin,
		Height: b.Height + 2*margin,
	}
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}
