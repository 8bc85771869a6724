package viewport

import (
	"math"

	"github.com/tsawler/facsimile/model"
)

// Zoom limits for the image viewport
const (
	MinScale = 0.2
	MaxScale = 5.0
)

// Viewport is a scrollable window onto content. Scroll offsets and the
// visible size are in viewport pixels; content size is unscaled, so the
// scrollable extent is content size times Scale.
type Viewport struct {
	ScrollX, ScrollY            float64
	Width, Height               float64
	Scale                       float64
	ContentWidth, ContentHeight float64
}

// New creates a viewport of the given visible size at scale 1
func New(width, height float64) *Viewport {
	return &Viewport{Width: width, Height: height, Scale: 1}
}

func (v *Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// Center returns the center of the visible area in content coordinates
func (v *Viewport) Center() model.Point {
	s := v.scale()
	return model.Point{
		X: (v.ScrollX + v.Width/2) / s,
		Y: (v.ScrollY + v.Height/2) / s,
	}
}

// MaxScroll returns the largest valid scroll offsets
func (v *Viewport) MaxScroll() (float64, float64) {
	s := v.scale()
	return math.Max(0, v.ContentWidth*s-v.Width), math.Max(0, v.ContentHeight*s-v.Height)
}

// ScrollTo moves the viewport, clamping to the scrollable extent
func (v *Viewport) ScrollTo(x, y float64) {
	maxX, maxY := v.MaxScroll()
	v.ScrollX = clamp(x, 0, maxX)
	v.ScrollY = clamp(y, 0, maxY)
}

// CenterOn scrolls so that the content-space point p is centered, as far
// as the scrollable extent allows
func (v *Viewport) CenterOn(p model.Point) {
	s := v.scale()
	v.ScrollTo(p.X*s-v.Width/2, p.Y*s-v.Height/2)
}

// CenterOnY scrolls vertically only
func (v *Viewport) CenterOnY(y float64) {
	s := v.scale()
	v.ScrollTo(v.ScrollX, y*s-v.Height/2)
}

// Pan moves the content by the pointer delta, as a drag does
func (v *Viewport) Pan(dx, dy float64) {
	v.ScrollTo(v.ScrollX-dx, v.ScrollY-dy)
}

// SetScale changes the zoom, keeping the visible center fixed, and reports
// whether the scale changed. The scale is clamped to [MinScale, MaxScale].
func (v *Viewport) SetScale(scale float64) bool {
	scale = clamp(scale, MinScale, MaxScale)
	if scale == v.Scale {
		return false
	}
	center := v.Center()
	v.Scale = scale
	v.CenterOn(center)
	return true
}

// Zoom adds delta to the scale
func (v *Viewport) Zoom(delta float64) bool {
	return v.SetScale(v.scale() + delta)
}

// FitWidth scales the content to the visible width
func (v *Viewport) FitWidth() bool {
	if v.ContentWidth <= 0 {
		return false
	}
	return v.SetScale(v.Width / v.ContentWidth)
}

// FitPage scales the content so it is entirely visible
func (v *Viewport) FitPage() bool {
	if v.ContentWidth <= 0 || v.ContentHeight <= 0 {
		return false
	}
	return v.SetScale(math.Min(v.Width/v.ContentWidth, v.Height/v.ContentHeight))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
