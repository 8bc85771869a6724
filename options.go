package facsimile

import (
	"golang.org/x/text/language"

	"github.com/tsawler/facsimile/highlight"
	"github.com/tsawler/facsimile/imagesrc"
	"github.com/tsawler/facsimile/layout"
)

// viewerOptions holds the configuration shared by every session of a Viewer.
type viewerOptions struct {
	// Transcription panel
	panel    layout.TextPanel
	fontSize float64
	measurer layout.Measurer // nil means Go Regular at fontSize

	// Visible viewport sizes
	imageWidth, imageHeight float64
	textWidth, textHeight   float64

	// Reading order fallback
	readingOrder layout.ReadingOrderConfig

	// Collaborators
	loader imagesrc.Loader
	sink   highlight.Sink // nil means a fresh highlight.Overlay per session

	// Annotation types hidden when a session starts
	hiddenTypes []string

	// Language for tooltip header casing
	lang language.Tag
}

// defaultOptions returns the default viewer options.
func defaultOptions() viewerOptions {
	panel := layout.DefaultTextPanel()
	return viewerOptions{
		panel:        panel,
		fontSize:     16,
		imageWidth:   800,
		imageHeight:  800,
		textWidth:    panel.Width,
		textHeight:   800,
		readingOrder: layout.DefaultReadingOrderConfig(),
		lang:         language.Und,
	}
}

// clone creates a deep copy of viewerOptions.
func (o viewerOptions) clone() viewerOptions {
	c := o
	if o.hiddenTypes != nil {
		c.hiddenTypes = make([]string, len(o.hiddenTypes))
		copy(c.hiddenTypes, o.hiddenTypes)
	}
	return c
}
