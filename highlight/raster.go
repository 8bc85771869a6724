package highlight

import (
	"image"
	"image/color"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/tsawler/facsimile/model"
)

// Style is the appearance of one highlight kind
type Style struct {
	Stroke      color.NRGBA
	Fill        color.NRGBA
	StrokeWidth float64 // in output pixels
}

// DefaultStyles returns the outline and fill colors of each kind
func DefaultStyles() map[Kind]Style {
	return map[Kind]Style{
		Region: {Stroke: color.NRGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xcc}, Fill: color.NRGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0x1a}, StrokeWidth: 2},
		Line:   {Stroke: color.NRGBA{R: 0xff, G: 0x99, B: 0x00, A: 0xcc}, Fill: color.NRGBA{R: 0xff, G: 0x99, B: 0x00, A: 0x26}, StrokeWidth: 2},
		Active: {Stroke: color.NRGBA{R: 0xe6, G: 0x2e, B: 0x2e, A: 0xff}, Fill: color.NRGBA{R: 0xe6, G: 0x2e, B: 0x2e, A: 0x40}, StrokeWidth: 3},
	}
}

// RasterOptions controls Rasterize
type RasterOptions struct {
	// Scale is the zoom factor applied to the page and the marks. Default: 1
	Scale float64

	// Elapsed is the time since the active highlight was set; it drives
	// the pulse of the active indicator
	Elapsed time.Duration

	// Styles overrides DefaultStyles per kind
	Styles map[Kind]Style
}

// Rasterize draws the page image at the requested scale with the marks
// painted on top. Mark boxes are in image space.
func Rasterize(page image.Image, marks []Mark, opts RasterOptions) *image.RGBA {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	src := page.Bounds()
	w := int(float64(src.Dx())*scale + 0.5)
	h := int(float64(src.Dy())*scale + 0.5)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), page, src, draw.Src, nil)

	styles := DefaultStyles()
	for k, s := range opts.Styles {
		styles[k] = s
	}

	bounds := model.NewBBox(0, 0, float64(w), float64(h))
	r := vector.NewRasterizer(w, h)
	for _, m := range marks {
		style, ok := styles[m.Kind]
		if !ok {
			continue
		}
		box := m.Box.Scale(scale)
		if box.IsEmpty() || !box.Intersects(bounds) {
			continue
		}

		fill, stroke := style.Fill, style.Stroke
		if m.Kind == Active {
			alpha := Pulse(opts.Elapsed)
			fill.A = uint8(float64(fill.A) * alpha)
			stroke.A = uint8(float64(stroke.A) * alpha)
		}

		r.Reset(w, h)
		rectPath(r, box, false)
		r.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{})

		sw := style.StrokeWidth
		if sw > 0 && box.Width > 2*sw && box.Height > 2*sw {
			r.Reset(w, h)
			rectPath(r, box, false)
			rectPath(r, box.Expand(-sw), true)
			r.Draw(dst, dst.Bounds(), image.NewUniform(stroke), image.Point{})
		}
	}

	return dst
}

// rectPath adds a closed rectangle to r; reversed rectangles cut holes
// into the ones drawn in the opposite direction.
func rectPath(r *vector.Rasterizer, b model.BBox, reverse bool) {
	x0, y0 := float32(b.Left()), float32(b.Top())
	x1, y1 := float32(b.Right()), float32(b.Bottom())
	r.MoveTo(x0, y0)
	if reverse {
		r.LineTo(x0, y1)
		r.LineTo(x1, y1)
		r.LineTo(x1, y0)
	} else {
		r.LineTo(x1, y0)
		r.LineTo(x1, y1)
		r.LineTo(x0, y1)
	}
	r.ClosePath()
}
