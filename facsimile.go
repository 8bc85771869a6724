// Package facsimile aligns a manuscript page image with its transcription.
//
// A [Viewer] holds configuration and is built fluently; each method returns
// a new Viewer, so a configured Viewer can be shared. A [Session] holds the
// state of one displayed document: the reading-ordered regions, the
// position and character offset maps derived from them, the applied
// annotations, the two viewports and the active highlight.
//
// Basic usage:
//
//	doc, err := pagexml.ParseFile("page.xml")
//	if err != nil {
//	    // handle error
//	}
//	s := facsimile.New().NewSession()
//	if err := s.LoadDocument(ctx, "page.jpg", doc, annotations); err != nil {
//	    // the image could not be loaded; nothing changed
//	}
//	html := s.Transcript()
//
// With options:
//
//	s := facsimile.New().
//	    ImageViewport(1200, 900).
//	    TextViewport(600, 900).
//	    FontSize(18).
//	    HideAnnotationTypes("morph").
//	    NewSession()
//
// Scroll events from either view are fed to [Session.OnScroll]; the other
// view follows. Pointer events on annotation spans go to
// [Session.DispatchSpan], which shows and hides tooltips on the sink.
package facsimile

import (
	"golang.org/x/text/language"

	"github.com/tsawler/facsimile/highlight"
	"github.com/tsawler/facsimile/imagesrc"
	"github.com/tsawler/facsimile/layout"
)

// Viewer is an immutable session factory. Configuration methods return a
// new Viewer, making it safe for concurrent use.
type Viewer struct {
	options viewerOptions
}

// New returns a Viewer with default configuration
func New() *Viewer {
	return &Viewer{options: defaultOptions()}
}

func (v *Viewer) clone() *Viewer {
	return &Viewer{options: v.options.clone()}
}

// PanelWidth sets the width of the transcription panel in pixels
func (v *Viewer) PanelWidth(width float64) *Viewer {
	n := v.clone()
	n.options.panel.Width = width
	return n
}

// FontSize sets the transcription font size in pixels. Ignored when a
// Measurer is set.
func (v *Viewer) FontSize(size float64) *Viewer {
	n := v.clone()
	n.options.fontSize = size
	return n
}

// Measurer sets the text measurer used to lay out the transcription panel
func (v *Viewer) Measurer(m layout.Measurer) *Viewer {
	n := v.clone()
	n.options.measurer = m
	return n
}

// ImageViewport sets the visible size of the image view
func (v *Viewer) ImageViewport(width, height float64) *Viewer {
	n := v.clone()
	n.options.imageWidth, n.options.imageHeight = width, height
	return n
}

// TextViewport sets the visible size of the transcription view
func (v *Viewer) TextViewport(width, height float64) *Viewer {
	n := v.clone()
	n.options.textWidth, n.options.textHeight = width, height
	return n
}

// VerticalTolerance sets how far apart two region tops may be and still
// count as one row when the reading order is derived from geometry
func (v *Viewer) VerticalTolerance(tolerance float64) *Viewer {
	n := v.clone()
	n.options.readingOrder.VerticalTolerance = tolerance
	return n
}

// RightToLeft orders same-row regions right to left when the reading
// order is derived from geometry
func (v *Viewer) RightToLeft() *Viewer {
	n := v.clone()
	n.options.readingOrder.Direction = layout.RightToLeft
	return n
}

// Loader sets the page image loader. Default: imagesrc.NewFetcher()
func (v *Viewer) Loader(l imagesrc.Loader) *Viewer {
	n := v.clone()
	n.options.loader = l
	return n
}

// Sink sets the highlight sink shared by sessions. By default every
// session draws into its own highlight.Overlay.
func (v *Viewer) Sink(s highlight.Sink) *Viewer {
	n := v.clone()
	n.options.sink = s
	return n
}

// HideAnnotationTypes starts sessions with the given annotation types
// switched off
func (v *Viewer) HideAnnotationTypes(types ...string) *Viewer {
	n := v.clone()
	n.options.hiddenTypes = append(n.options.hiddenTypes, types...)
	return n
}

// Language sets the language used to case tooltip headers
func (v *Viewer) Language(tag language.Tag) *Viewer {
	n := v.clone()
	n.options.lang = tag
	return n
}

// Must panics if err is non-nil and returns val otherwise. It is meant for
// scripts and tests.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
