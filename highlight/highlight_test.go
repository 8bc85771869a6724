package highlight

import (
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"golang.org/x/image/draw"

	"github.com/tsawler/facsimile/model"
)

// ============================================================================
// Overlay Tests
// ============================================================================

func TestOverlayShowHide(t *testing.T) {
	o := NewOverlay()
	box := model.NewBBox(1, 2, 3, 4)

	o.Show(Line, "l1", box)
	o.Show(Region, "r1", box)
	if !o.Visible(Line, "l1") || !o.Visible(Region, "r1") {
		t.Fatal("expected both marks visible")
	}
	if o.Visible(Line, "r1") {
		t.Error("kinds must not collide")
	}

	o.Hide(Line, "l1")
	if o.Visible(Line, "l1") {
		t.Error("l1 should be hidden")
	}

	o.HideAll()
	if len(o.Marks()) != 0 {
		t.Errorf("HideAll left %v", o.Marks())
	}
}

func TestOverlaySingleActive(t *testing.T) {
	o := NewOverlay()
	o.Show(Active, "l1", model.NewBBox(0, 0, 1, 1))
	o.Show(Active, "l2", model.NewBBox(5, 5, 1, 1))

	active, ok := o.Active()
	if !ok || active.ID != "l2" {
		t.Errorf("Active() = %+v, %v; want l2", active, ok)
	}

	count := 0
	for _, m := range o.Marks() {
		if m.Kind == Active {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d active marks, want 1", count)
	}
}

func TestOverlayMarksOrdered(t *testing.T) {
	o := NewOverlay()
	o.Show(Active, "z", model.BBox{})
	o.Show(Region, "b", model.BBox{})
	o.Show(Region, "a", model.BBox{})

	marks := o.Marks()
	if len(marks) != 3 || marks[0].ID != "a" || marks[1].ID != "b" || marks[2].Kind != Active {
		t.Errorf("Marks() = %+v", marks)
	}
}

func TestOverlayTooltip(t *testing.T) {
	o := NewOverlay()
	if _, ok := o.Tooltip(); ok {
		t.Error("no tooltip expected initially")
	}

	o.ShowTooltip(Tooltip{SpanID: "ann-1", Header: "POS: noun"})
	tip, ok := o.Tooltip()
	if !ok || tip.Header != "POS: noun" {
		t.Errorf("Tooltip() = %+v, %v", tip, ok)
	}

	o.HideAll()
	if _, ok := o.Tooltip(); !ok {
		t.Error("HideAll should not remove the tooltip")
	}
	o.HideTooltip()
	if _, ok := o.Tooltip(); ok {
		t.Error("tooltip should be hidden")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{Region: "region", Line: "line", Active: "active", Kind(42): "unknown"}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestPulse(t *testing.T) {
	if p := Pulse(0); math.Abs(p-1) > 1e-9 {
		t.Errorf("Pulse(0) = %v, want 1", p)
	}
	if p := Pulse(PulsePeriod / 2); math.Abs(p-0.35) > 1e-9 {
		t.Errorf("Pulse(half) = %v, want 0.35", p)
	}
	if p := Pulse(PulsePeriod); math.Abs(p-1) > 1e-9 {
		t.Errorf("Pulse(period) = %v, want 1", p)
	}
	for d := time.Duration(0); d < 3*time.Second; d += 37 * time.Millisecond {
		if p := Pulse(d); p < 0.35-1e-9 || p > 1+1e-9 {
			t.Fatalf("Pulse(%v) = %v out of range", d, p)
		}
	}
}

// ============================================================================
// Rasterize Tests
// ============================================================================

func whitePage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func TestRasterizeMarks(t *testing.T) {
	page := whitePage(100, 100)
	marks := []Mark{{Kind: Line, ID: "l1", Box: model.NewBBox(10, 10, 40, 40)}}

	out := Rasterize(page, marks, RasterOptions{})
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
		t.Fatalf("bounds = %v", out.Bounds())
	}

	outside := out.RGBAAt(80, 80)
	if outside.R != 255 || outside.G != 255 || outside.B != 255 {
		t.Errorf("pixel outside mark = %v, want white", outside)
	}

	inside := out.RGBAAt(30, 30)
	if inside.B >= 250 {
		t.Errorf("pixel inside mark = %v, want tinted", inside)
	}

	edge := out.RGBAAt(11, 11)
	if edge.B >= 120 {
		t.Errorf("pixel on outline = %v, want stroke color", edge)
	}
}

func TestRasterizeScale(t *testing.T) {
	page := whitePage(50, 20)
	out := Rasterize(page, []Mark{{Kind: Region, ID: "r", Box: model.NewBBox(0, 0, 10, 10)}}, RasterOptions{Scale: 2})
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 40 {
		t.Errorf("scaled bounds = %v, want 100x40", out.Bounds())
	}
	if px := out.RGBAAt(10, 10); px.B == 255 && px.R == 255 && px.G == 255 {
		t.Error("scaled mark should cover (10,10)")
	}
}

func TestRasterizeSkipsEmptyAndOffPageBoxes(t *testing.T) {
	page := whitePage(10, 10)
	marks := []Mark{
		{Kind: Active, ID: "l", Box: model.BBox{}},
		{Kind: Line, ID: "below", Box: model.NewBBox(0, 180, 10, 10)},
		{Kind: Region, ID: "left", Box: model.NewBBox(-50, 0, 20, 10)},
	}
	out := Rasterize(page, marks, RasterOptions{})
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if px := out.RGBAAt(x, y); px != (color.RGBA{255, 255, 255, 255}) {
				t.Fatalf("pixel (%d,%d) = %v, want white", x, y, px)
			}
		}
	}
}
