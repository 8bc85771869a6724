package facsimile

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/tsawler/facsimile/annotate"
	"github.com/tsawler/facsimile/highlight"
	"github.com/tsawler/facsimile/imagesrc"
	"github.com/tsawler/facsimile/layout"
	"github.com/tsawler/facsimile/mapping"
	"github.com/tsawler/facsimile/model"
	"github.com/tsawler/facsimile/transcript"
	"github.com/tsawler/facsimile/viewport"
)

// Session is the state of one viewer showing one document at a time.
// Every operation runs to completion before returning; the only step that
// waits on I/O is loading the page image. Session is safe for concurrent
// use, though it is meant to be driven from a single event loop.
type Session struct {
	mu sync.Mutex

	opts     viewerOptions
	logger   *slog.Logger
	measurer layout.Measurer
	loader   imagesrc.Loader
	sink     highlight.Sink
	aligner  *annotate.Aligner
	tips     *annotate.TooltipBuilder
	toggles  *annotate.Toggles

	imageView *viewport.Viewport
	textView  *viewport.Viewport
	syncer    *viewport.Synchronizer

	// Per-document state, replaced wholesale by LoadDocument
	doc          *model.Document
	image        *imagesrc.Image
	regions      []*model.TextRegion
	panel        *layout.PanelLayout
	offsets      *mapping.OffsetMap
	positions    *mapping.PositionMap
	annotations  []model.Annotation
	result       *annotate.Result
	transcript   string
	activeLine   string
	activeSince  time.Time
	hoveredLine  string
	loadWarnings []Warning
	annWarnings  []Warning
}

// NewSession creates a session with no document loaded
func (v *Viewer) NewSession() *Session {
	opts := v.options.clone()
	logger := Logger()

	measurer := opts.measurer
	if measurer == nil {
		m, err := layout.NewGoRegularMeasurer(opts.fontSize)
		if err != nil {
			logger.Warn("falling back to default measurer", "error", err)
			measurer = layout.DefaultMeasurer()
		} else {
			measurer = m
		}
	}

	loader := opts.loader
	if loader == nil {
		loader = imagesrc.NewFetcher()
	}

	sink := opts.sink
	if sink == nil {
		sink = highlight.NewOverlay()
	}

	toggles := annotate.NewToggles()
	for _, typ := range opts.hiddenTypes {
		toggles.Set(typ, false)
	}

	s := &Session{
		opts:      opts,
		logger:    logger,
		measurer:  measurer,
		loader:    loader,
		sink:      sink,
		aligner:   annotate.NewAligner(logger),
		tips:      annotate.NewTooltipBuilder(opts.lang),
		toggles:   toggles,
		imageView: viewport.New(opts.imageWidth, opts.imageHeight),
		textView:  viewport.New(opts.textWidth, opts.textHeight),
	}
	s.syncer = viewport.NewSynchronizer(s.imageView, s.textView, logger)
	return s
}

// LoadDocument shows doc with the page image at imageURL.
//
// The image is loaded first, since placing line boxes on the page needs
// its intrinsic size. If that fails the error wraps ErrImageLoad and the
// session keeps showing the previous document, untouched. Otherwise the
// session works on a copy of doc: repeated or missing region and line ids
// are renamed with a warning, and when the page declares a size different
// from the image's, coordinates are scaled to image pixels. Then all
// state is reset: the reading order is resolved, the transcription panel
// laid out, both maps rebuilt, the base transcription rendered, the
// annotations applied, the image fitted to the view width and scroll
// synchronization enabled.
func (s *Session) LoadDocument(ctx context.Context, imageURL string, doc *model.Document, annotations []model.Annotation) error {
	if doc == nil {
		return ErrNoDocument
	}

	img, err := s.loader.Load(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageLoad, err)
	}

	view := doc.Clone()
	renames := view.UniqueIDs()
	sx, sy, scaled := pageScale(doc.Page, img)
	if scaled {
		view.ScaleCoordinates(sx, sy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.doc = view
	s.image = img

	for _, w := range renames {
		s.logger.Warn("id repaired", "detail", w)
	}
	if scaled {
		s.logger.Debug("page coordinates scaled to image", "sx", sx, "sy", sy)
	}

	order := layout.NewReadingOrderResolverWithConfig(s.opts.readingOrder).Resolve(view)
	s.regions = order.Regions
	s.loadWarnings = append(toWarnings(WarnDocument, renames), toWarnings(WarnReadingOrder, order.Warnings)...)
	for _, w := range order.Warnings {
		s.logger.Warn("reading order repaired", "detail", w)
	}

	s.layoutPanel()

	s.imageView.ContentWidth = float64(img.Width)
	s.imageView.ContentHeight = float64(img.Height)
	s.imageView.SetScale(1)
	s.imageView.ScrollTo(0, 0)
	s.imageView.FitWidth()

	if len(annotations) > 0 {
		s.applyLocked(annotations)
	} else {
		s.render()
	}

	s.syncer.Rebind(s.positions)
	on := true
	s.syncer.Toggle(&on)

	s.logger.Info("document loaded",
		"image", imageURL,
		"width", img.Width, "height", img.Height,
		"regions", len(s.regions),
		"lines", s.positions.Len(),
		"offsets", s.offsets.Total(),
		"geometricOrder", order.Geometric)
	return nil
}

// pageScale returns the factors mapping the page's declared coordinate
// space onto the loaded image. ok is false when the page declares no size
// or the sizes already agree.
func pageScale(page model.Page, img *imagesrc.Image) (sx, sy float64, ok bool) {
	if page.Width <= 0 || page.Height <= 0 || img.Width <= 0 || img.Height <= 0 {
		return 1, 1, false
	}
	if page.Width == img.Width && page.Height == img.Height {
		return 1, 1, false
	}
	return float64(img.Width) / float64(page.Width), float64(img.Height) / float64(page.Height), true
}

// reset drops all per-document state and clears the sink
func (s *Session) reset() {
	s.sink.HideAll()
	s.sink.HideTooltip()
	s.syncer.Rebind(nil)

	s.doc = nil
	s.image = nil
	s.regions = nil
	s.panel = nil
	s.offsets = nil
	s.positions = nil
	s.annotations = nil
	s.result = nil
	s.transcript = ""
	s.activeLine = ""
	s.activeSince = time.Time{}
	s.hoveredLine = ""
	s.loadWarnings = nil
	s.annWarnings = nil
}

// layoutPanel measures the transcription and rebuilds both maps from it
func (s *Session) layoutPanel() {
	s.panel = s.opts.panel.Layout(s.regions, s.measurer)
	s.offsets = mapping.BuildOffsetMap(s.regions, s.panel)
	s.positions = mapping.BuildPositionMap(s.regions, s.panel)

	s.textView.ContentWidth = s.opts.panel.Width
	s.textView.ContentHeight = s.panel.ContentHeight
	s.textView.ScrollTo(0, 0)
}

// ApplyAnnotations replaces the applied annotations with annotations.
// Previously applied markup is cleared first, so applying the same set
// twice gives the same result. Invalid annotations are skipped and
// reported by Warnings.
func (s *Session) ApplyAnnotations(annotations []model.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNoDocument
	}
	s.applyLocked(annotations)
	return nil
}

func (s *Session) applyLocked(annotations []model.Annotation) {
	s.sink.HideTooltip()
	s.annotations = append([]model.Annotation(nil), annotations...)
	s.result = s.aligner.Align(s.offsets, s.annotations, s.toggles)
	s.annWarnings = toWarnings(WarnAnnotation, s.result.Warnings)
	s.render()

	s.logger.Debug("annotations applied",
		"annotations", len(s.annotations),
		"spans", s.result.Registry.Len(),
		"lines", len(s.result.Lines),
		"skipped", s.result.Skipped)
}

// ClearAnnotations restores every line to its original text and forgets
// the applied annotations
func (s *Session) ClearAnnotations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.HideTooltip()
	s.annotations = nil
	s.result = nil
	s.annWarnings = nil
	s.render()
}

// SetAnnotationType switches an annotation type on or off and reapplies
// the current annotations
func (s *Session) SetAnnotationType(typ string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles.Set(typ, on)
	s.reapply()
}

// SetAllAnnotationTypes switches every annotation type on or off
func (s *Session) SetAllAnnotationTypes(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.toggles.EnableAll()
	} else {
		s.toggles.DisableAll()
	}
	s.reapply()
}

func (s *Session) reapply() {
	if s.doc != nil && s.annotations != nil {
		s.applyLocked(s.annotations)
	}
}

// render regenerates the transcription panel from the current markup
func (s *Session) render() {
	opts := transcript.Options{ActiveLine: s.activeLine}
	if s.result != nil {
		opts.Markup = s.result.Lines
		opts.Registry = s.result.Registry
	}
	out, err := transcript.Render(s.regions, opts)
	if err != nil {
		s.logger.Error("rendering transcript", "error", err)
		return
	}
	s.transcript = out
}

// HighlightLine makes lineID the single active line
func (s *Session) HighlightLine(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlightLocked(lineID)
}

func (s *Session) highlightLocked(lineID string) error {
	entry, ok := s.positions.Entry(lineID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
	}
	if s.activeLine != "" && s.activeLine != lineID {
		s.sink.Hide(highlight.Active, s.activeLine)
	}
	s.sink.Show(highlight.Active, lineID, entry.ImageBBox)
	if s.activeLine != lineID {
		s.activeSince = time.Now()
	}
	s.activeLine = lineID
	s.render()
	s.logger.Debug("line highlighted", "line", lineID)
	return nil
}

// UnhighlightLine removes the active highlight, if any
func (s *Session) UnhighlightLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeLine == "" {
		return
	}
	s.sink.Hide(highlight.Active, s.activeLine)
	s.activeLine = ""
	s.activeSince = time.Time{}
	s.render()
}

// ScrollToLine centers lineID in both views and makes it the active line
func (s *Session) ScrollToLine(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.syncer.CenterOn(lineID) {
		return fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
	}
	return s.highlightLocked(lineID)
}

// HoverLine outlines a line and its region on the image, as when the
// pointer enters the line in the transcription. The previous hover is
// cleared.
func (s *Session) HoverLine(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offsets == nil {
		return ErrNoDocument
	}
	s.leaveLocked()
	span, ok := s.offsets.Line(lineID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
	}
	s.sink.Show(highlight.Region, span.RegionID, span.RegionBox)
	s.sink.Show(highlight.Line, lineID, span.LineBox)
	s.hoveredLine = lineID
	return nil
}

// LeaveLine clears the hover outlines
func (s *Session) LeaveLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveLocked()
}

func (s *Session) leaveLocked() {
	if s.hoveredLine == "" {
		return
	}
	if span, ok := s.offsets.Line(s.hoveredLine); ok {
		s.sink.Hide(highlight.Region, span.RegionID)
	}
	s.sink.Hide(highlight.Line, s.hoveredLine)
	s.hoveredLine = ""
}

// ToggleSync sets scroll synchronization to *on, or flips it when on is
// nil, and returns the new state
func (s *Session) ToggleSync(on *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncer.Toggle(on)
}

// SyncEnabled reports whether scroll synchronization is on
func (s *Session) SyncEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncer.Enabled()
}

// OnScroll reports a user scroll of one view; the other view is centered
// on the nearest line. It returns that line's id, or false when nothing
// was synchronized.
func (s *Session) OnScroll(source viewport.Source) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncer.OnScroll(viewport.ScrollEvent{Source: source, Origin: viewport.User})
}

// HandleScroll reports a scroll event from the embedding UI. A UI that
// queues events stamps them with PositionMap().Generation(); events raised
// before a later load are then dropped.
func (s *Session) HandleScroll(ev viewport.ScrollEvent) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncer.OnScroll(ev)
}

// Scroll moves one view to the given offsets as a user scroll would
func (s *Session) Scroll(source viewport.Source, x, y float64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view(source).ScrollTo(x, y)
	return s.syncer.OnScroll(viewport.ScrollEvent{Source: source, Origin: viewport.User})
}

// Pan drags the image by the pointer delta
func (s *Session) Pan(dx, dy float64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageView.Pan(dx, dy)
	return s.syncer.OnScroll(viewport.ScrollEvent{Source: viewport.ImageView, Origin: viewport.User})
}

// Zoom changes the image scale by delta, clamped to [MinScale, MaxScale]
func (s *Session) Zoom(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageView.Zoom(delta)
	return s.imageView.Scale
}

// FitWidth scales the image to the view width
func (s *Session) FitWidth() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageView.FitWidth()
	return s.imageView.Scale
}

// FitPage scales the image so the whole page is visible
func (s *Session) FitPage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageView.FitPage()
	return s.imageView.Scale
}

// DispatchSpan routes a pointer event on an annotation span to the
// tooltip sink. It reports false for spans that are not rendered.
func (s *Session) DispatchSpan(ev annotate.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		if ev.Kind == annotate.PointerLeave {
			s.sink.HideTooltip()
			return true
		}
		return false
	}
	return s.result.Registry.Dispatch(ev, s.tips, s.sink)
}

// Snapshot renders the page image at the current image scale with the
// visible highlights on top. It needs the session's default overlay sink.
func (s *Session) Snapshot() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.image == nil {
		return nil, ErrNoDocument
	}
	overlay, ok := s.sink.(*highlight.Overlay)
	if !ok {
		return nil, fmt.Errorf("snapshot needs a highlight.Overlay sink, have %T", s.sink)
	}
	page, err := s.image.Decode()
	if err != nil {
		return nil, err
	}

	var elapsed time.Duration
	if !s.activeSince.IsZero() {
		elapsed = time.Since(s.activeSince)
	}
	return highlight.Rasterize(page, overlay.Marks(), highlight.RasterOptions{
		Scale:   s.imageView.Scale,
		Elapsed: elapsed,
	}), nil
}

func (s *Session) view(source viewport.Source) *viewport.Viewport {
	if source == viewport.TextView {
		return s.textView
	}
	return s.imageView
}

// Document returns the document being shown, or nil. It is a copy of the
// loaded one with unique ids and coordinates in image pixels.
func (s *Session) Document() *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Image returns the loaded page image, or nil
func (s *Session) Image() *imagesrc.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Regions returns the regions in reading order
func (s *Session) Regions() []*model.TextRegion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regions
}

// Transcript returns the rendered transcription panel
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// OffsetMap returns the character offset map of the loaded document
func (s *Session) OffsetMap() *mapping.OffsetMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offsets
}

// PositionMap returns the position map of the loaded document
func (s *Session) PositionMap() *mapping.PositionMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions
}

// Annotations returns the result of the last annotation pass, or nil
func (s *Session) Annotations() *annotate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Legend summarizes the annotation types of the applied set
func (s *Session) Legend() []annotate.LegendEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return annotate.Legend(s.annotations, s.toggles)
}

// ActiveLine returns the id of the active line, or ""
func (s *Session) ActiveLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLine
}

// ImageViewport returns a copy of the image view state
func (s *Session) ImageViewport() viewport.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.imageView
}

// TextViewport returns a copy of the transcription view state
func (s *Session) TextViewport() viewport.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.textView
}

// Warnings returns the warnings of the last load and annotation pass
func (s *Session) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, 0, len(s.loadWarnings)+len(s.annWarnings))
	out = append(out, s.loadWarnings...)
	return append(out, s.annWarnings...)
}

// Sink returns the highlight sink the session draws into
func (s *Session) Sink() highlight.Sink {
	return s.sink
}
