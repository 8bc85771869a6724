package viewport

import (
	"io"
	"log/slog"

	"github.com/tsawler/facsimile/mapping"
)

// Source identifies one of the two synchronized viewports
type Source int

const (
	// ImageView is the facsimile image viewport
	ImageView Source = iota
	// TextView is the transcription panel viewport
	TextView
)

// String returns a string representation of the source
func (s Source) String() string {
	if s == TextView {
		return "text"
	}
	return "image"
}

// Origin tells whether a scroll was made by the user or by synchronization
type Origin int

const (
	User Origin = iota
	Sync
)

// ScrollEvent reports that a viewport scrolled
type ScrollEvent struct {
	Source Source
	Origin Origin
	// Generation of the position map the event was raised against; zero
	// means the bound one.
	Generation uint64
}

// Synchronizer keeps the image and text viewports showing the same line.
//
// Scrolls it performs are reported to the observer tagged Origin Sync and
// are ignored if fed back into OnScroll, so programmatic scrolls never
// bounce between the views. Events stamped with the generation of a map
// that has since been rebound are dropped. A synchronous re-entry from the observer is
// additionally ignored while a sync is being applied.
type Synchronizer struct {
	positions *mapping.PositionMap
	image     *Viewport
	text      *Viewport
	enabled   bool
	inFlight  bool
	observer  func(ScrollEvent)
	logger    *slog.Logger
}

// NewSynchronizer creates an enabled synchronizer over two viewports
func NewSynchronizer(image, text *Viewport, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Synchronizer{image: image, text: text, enabled: true, logger: logger}
}

// Observe registers a callback for scrolls performed by the synchronizer
func (s *Synchronizer) Observe(fn func(ScrollEvent)) {
	s.observer = fn
}

// Rebind replaces the position map, e.g. after a document load. Nil
// disables synchronization until a map is bound.
func (s *Synchronizer) Rebind(positions *mapping.PositionMap) {
	s.positions = positions
}

// Positions returns the bound position map
func (s *Synchronizer) Positions() *mapping.PositionMap { return s.positions }

// Enabled reports whether scroll synchronization is on
func (s *Synchronizer) Enabled() bool { return s.enabled }

// Toggle sets synchronization to *on, or flips it when on is nil, and
// returns the new state
func (s *Synchronizer) Toggle(on *bool) bool {
	if on != nil {
		s.enabled = *on
	} else {
		s.enabled = !s.enabled
	}
	return s.enabled
}

// OnScroll handles a scroll of one viewport by centering the nearest line
// in the other. It returns the id of the line synchronized to, and false
// when the event was ignored.
func (s *Synchronizer) OnScroll(ev ScrollEvent) (string, bool) {
	if !s.enabled || s.inFlight || ev.Origin == Sync || s.positions.Len() == 0 {
		return "", false
	}
	if ev.Generation != 0 && ev.Generation != s.positions.Generation() {
		s.logger.Debug("stale scroll dropped", "source", ev.Source, "generation", ev.Generation)
		return "", false
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()

	switch ev.Source {
	case ImageView:
		entry, ok := s.positions.NearestToPoint(s.image.Center())
		if !ok {
			return "", false
		}
		s.text.CenterOnY(entry.RenderCenter())
		s.logger.Debug("synced text to image", "line", entry.LineID, "scrollY", s.text.ScrollY)
		s.notify(TextView)
		return entry.LineID, true

	case TextView:
		entry, ok := s.positions.NearestToRenderY(s.text.Center().Y)
		if !ok {
			return "", false
		}
		s.image.CenterOn(entry.ImageBBox.Center())
		s.logger.Debug("synced image to text", "line", entry.LineID, "scrollX", s.image.ScrollX, "scrollY", s.image.ScrollY)
		s.notify(ImageView)
		return entry.LineID, true
	}
	return "", false
}

// CenterOn centers a line in both viewports regardless of whether
// synchronization is enabled. It reports false for unknown lines.
func (s *Synchronizer) CenterOn(lineID string) bool {
	entry, ok := s.positions.Entry(lineID)
	if !ok {
		return false
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()

	s.image.CenterOn(entry.ImageBBox.Center())
	s.text.CenterOnY(entry.RenderCenter())
	s.notify(ImageView)
	s.notify(TextView)
	return true
}

func (s *Synchronizer) notify(src Source) {
	if s.observer != nil {
		s.observer(ScrollEvent{Source: src, Origin: Sync, Generation: s.positions.Generation()})
	}
}
