package facsimile

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/tsawler/facsimile/annotate"
	"github.com/tsawler/facsimile/highlight"
	"github.com/tsawler/facsimile/imagesrc"
	"github.com/tsawler/facsimile/model"
	"github.com/tsawler/facsimile/transcript"
	"github.com/tsawler/facsimile/viewport"
)

// fixedMeasurer advances 10px per rune with 20px rows
type fixedMeasurer struct{}

func (fixedMeasurer) Advance(s string) float64 { return float64(len([]rune(s))) * 10 }
func (fixedMeasurer) LineHeight() float64      { return 20 }

// pageLoader serves a blank 100x200 PNG for every URL except "bad"
type pageLoader struct {
	data []byte
}

func newPageLoader(t *testing.T) *pageLoader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 100, 200))); err != nil {
		t.Fatal(err)
	}
	return &pageLoader{data: buf.Bytes()}
}

func (l *pageLoader) Load(_ context.Context, rawURL string) (*imagesrc.Image, error) {
	if rawURL == "bad" {
		return nil, errors.New("404 not found")
	}
	return imagesrc.FromBytes(rawURL, l.data)
}

func rect(x, y, w, h float64) []model.Point {
	return []model.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

func helloWorldDoc() *model.Document {
	return &model.Document{
		Page: model.Page{Width: 100, Height: 200},
		Regions: []model.TextRegion{{
			ID:          "r1",
			Coordinates: rect(0, 0, 100, 200),
			Lines: []model.Line{
				{ID: "l1", Coordinates: rect(0, 0, 100, 20), Text: "Hello"},
				{ID: "l2", Coordinates: rect(0, 150, 100, 20), Text: "World"},
			},
		}},
	}
}

func testSession(t *testing.T) *Session {
	t.Helper()
	return New().
		Measurer(fixedMeasurer{}).
		Loader(newPageLoader(t)).
		ImageViewport(100, 100).
		TextViewport(480, 40).
		NewSession()
}

func loadHelloWorld(t *testing.T, anns ...model.Annotation) *Session {
	t.Helper()
	s := testSession(t)
	if err := s.LoadDocument(context.Background(), "page.png", helloWorldDoc(), anns); err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	return s
}

var nounAnnotation = model.Annotation{Start: 1, End: 4, Type: "pos", Subtype: "noun",
	Metadata: map[string]string{"description": "A **common** noun"}}

// ============================================================================
// Load Tests
// ============================================================================

func TestLoadDocumentHelloWorld(t *testing.T) {
	s := loadHelloWorld(t, nounAnnotation)

	offsets := s.OffsetMap()
	if offsets.Total() != 12 {
		t.Errorf("Total() = %d, want 12", offsets.Total())
	}
	if s.PositionMap().Len() != 2 {
		t.Errorf("position map has %d entries", s.PositionMap().Len())
	}

	result := s.Annotations()
	if len(result.Splits) != 1 {
		t.Fatalf("got %d splits", len(result.Splits))
	}
	split := result.Splits[0]
	if split.Prefix != "H" || split.Span != "ell" || split.Suffix != "o" {
		t.Errorf("split = %q/%q/%q", split.Prefix, split.Span, split.Suffix)
	}

	lines, err := transcript.ReadLines(strings.NewReader(s.Transcript()))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d rendered lines", len(lines))
	}
	if lines[0].Text != "Hello" || len(lines[0].SpanIDs) != 1 {
		t.Errorf("line 1 = %+v", lines[0])
	}
	if lines[1].Text != "World" || len(lines[1].SpanIDs) != 0 {
		t.Errorf("line 2 should be untouched: %+v", lines[1])
	}

	if !s.SyncEnabled() {
		t.Error("sync should be enabled after load")
	}
	if iv := s.ImageViewport(); iv.Scale != 1 || iv.ContentWidth != 100 {
		t.Errorf("image viewport = %+v, want fitted to width", iv)
	}
}

func TestLoadDocumentImageFailureKeepsState(t *testing.T) {
	s := loadHelloWorld(t, nounAnnotation)
	if err := s.HighlightLine("l2"); err != nil {
		t.Fatal(err)
	}
	before := s.Transcript()
	positions := s.PositionMap()

	other := &model.Document{Regions: []model.TextRegion{{ID: "x", Lines: []model.Line{{ID: "y", Text: "other"}}}}}
	err := s.LoadDocument(context.Background(), "bad", other, nil)
	if !errors.Is(err, ErrImageLoad) {
		t.Fatalf("error = %v, want ErrImageLoad", err)
	}

	if s.Transcript() != before {
		t.Error("transcript changed after failed load")
	}
	if s.PositionMap() != positions {
		t.Error("position map replaced after failed load")
	}
	if s.Document().Regions[0].ID != "r1" || s.ActiveLine() != "l2" {
		t.Error("document state changed after failed load")
	}
}

func TestLoadDocumentResetsState(t *testing.T) {
	s := loadHelloWorld(t, nounAnnotation)
	s.HighlightLine("l1")
	first := s.PositionMap().Generation()

	if err := s.LoadDocument(context.Background(), "page.png", helloWorldDoc(), nil); err != nil {
		t.Fatal(err)
	}
	if s.Annotations() != nil || s.ActiveLine() != "" {
		t.Error("annotations and active line should be reset")
	}
	if s.PositionMap().Generation() == first {
		t.Error("position map should be rebuilt")
	}
	if _, ok := s.Sink().(*highlight.Overlay).Active(); ok {
		t.Error("active highlight should be cleared")
	}
}

func TestLoadDocumentNil(t *testing.T) {
	if err := testSession(t).LoadDocument(context.Background(), "page.png", nil, nil); !errors.Is(err, ErrNoDocument) {
		t.Errorf("error = %v, want ErrNoDocument", err)
	}
}

func TestLoadDocumentReadingOrderWarnings(t *testing.T) {
	doc := helloWorldDoc()
	doc.ReadingOrder = []string{"r1", "ghost"}

	s := testSession(t)
	if err := s.LoadDocument(context.Background(), "page.png", doc, nil); err != nil {
		t.Fatal(err)
	}
	warnings := s.Warnings()
	if len(warnings) != 1 || warnings[0].Source != WarnReadingOrder {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLoadDocumentRepeatedLineIDs(t *testing.T) {
	doc := &model.Document{
		Page: model.Page{Width: 100, Height: 200},
		Regions: []model.TextRegion{
			{ID: "r1", Coordinates: rect(0, 0, 100, 50),
				Lines: []model.Line{{ID: "line_0", Coordinates: rect(0, 0, 100, 20), Text: "Hi"}}},
			{ID: "r2", Coordinates: rect(0, 100, 100, 50),
				Lines: []model.Line{{ID: "line_0", Coordinates: rect(0, 100, 100, 20), Text: "Hello world"}}},
		},
	}
	place := model.Annotation{Start: 9, End: 14, Type: "ner", Subtype: "place"}

	s := testSession(t)
	if err := s.LoadDocument(context.Background(), "page.png", doc, []model.Annotation{place}); err != nil {
		t.Fatal(err)
	}

	lines, err := transcript.ReadLines(strings.NewReader(s.Transcript()))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d rendered lines", len(lines))
	}
	if lines[0].LineID != "line_0" || lines[0].Text != "Hi" || len(lines[0].SpanIDs) != 0 {
		t.Errorf("line 1 = %+v", lines[0])
	}
	if lines[1].LineID != "line_0_2" || lines[1].Text != "Hello world" || len(lines[1].SpanIDs) != 1 {
		t.Errorf("line 2 = %+v", lines[1])
	}

	warnings := s.Warnings()
	if len(warnings) != 1 || warnings[0].Source != WarnDocument || !strings.Contains(warnings[0].Message, `"line_0_2"`) {
		t.Errorf("warnings = %v", warnings)
	}
	if doc.Regions[1].Lines[0].ID != "line_0" {
		t.Error("the caller's document should not be modified")
	}
	if err := s.HighlightLine("line_0_2"); err != nil {
		t.Errorf("HighlightLine(renamed) error = %v", err)
	}
}

func TestLoadDocumentScalesPageToImage(t *testing.T) {
	// PAGE coordinates for a 200x400 scan shown as a 100x200 derivative
	doc := &model.Document{
		Page: model.Page{Width: 200, Height: 400},
		Regions: []model.TextRegion{{
			ID:          "r1",
			Coordinates: rect(0, 0, 200, 400),
			Lines: []model.Line{
				{ID: "l1", Coordinates: rect(0, 0, 200, 40), Text: "Hello"},
				{ID: "l2", Coordinates: rect(0, 300, 200, 40), Text: "World"},
			},
		}},
	}

	s := testSession(t)
	if err := s.LoadDocument(context.Background(), "page.png", doc, nil); err != nil {
		t.Fatal(err)
	}

	entry, ok := s.PositionMap().Entry("l2")
	if !ok || entry.ImageBBox != model.NewBBox(0, 150, 100, 20) {
		t.Errorf("l2 image box = %+v, want (0,150 100x20)", entry.ImageBBox)
	}
	if p := s.Document().Page; p.Width != 100 || p.Height != 200 {
		t.Errorf("page = %+v, want the image size", p)
	}
	if doc.Regions[0].Lines[1].Coordinates[0] != (model.Point{X: 0, Y: 300}) {
		t.Error("the caller's document should keep page coordinates")
	}

	if err := s.HighlightLine("l2"); err != nil {
		t.Fatal(err)
	}
	if m, ok := s.Sink().(*highlight.Overlay).Active(); !ok || m.Box != model.NewBBox(0, 150, 100, 20) {
		t.Errorf("active mark = %+v, want image pixels", m)
	}

	// image center (50, 150) is nearest to l2 only in image pixels
	if line, ok := s.Scroll(viewport.ImageView, 0, 100); !ok || line != "l2" {
		t.Errorf("Scroll() synced to %q, %v; want l2", line, ok)
	}
}

func TestHandleScrollDropsStaleEvents(t *testing.T) {
	s := loadHelloWorld(t)
	stale := s.PositionMap().Generation()

	if err := s.LoadDocument(context.Background(), "page.png", helloWorldDoc(), nil); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.HandleScroll(viewport.ScrollEvent{Source: viewport.ImageView, Generation: stale}); ok {
		t.Error("event from the previous load should be dropped")
	}
	current := s.PositionMap().Generation()
	if _, ok := s.HandleScroll(viewport.ScrollEvent{Source: viewport.ImageView, Generation: current}); !ok {
		t.Error("event for the current map should synchronize")
	}
}

// ============================================================================
// Annotation Tests
// ============================================================================

func TestClearThenReapply(t *testing.T) {
	s := loadHelloWorld(t)
	base := s.Transcript()

	if err := s.ApplyAnnotations([]model.Annotation{nounAnnotation, {Start: 6, End: 11, Type: "ner", Subtype: "place"}}); err != nil {
		t.Fatal(err)
	}
	if s.Transcript() == base {
		t.Fatal("annotations should change the transcript")
	}

	s.ClearAnnotations()
	if s.Transcript() != base {
		t.Errorf("after clear:\n%s\nwant\n%s", s.Transcript(), base)
	}
}

func TestApplyAnnotationsIdempotent(t *testing.T) {
	s := loadHelloWorld(t)
	anns := []model.Annotation{nounAnnotation}

	s.ApplyAnnotations(anns)
	once := s.Transcript()
	s.ApplyAnnotations(anns)
	if s.Transcript() != once {
		t.Error("applying twice should equal applying once")
	}

	s.ApplyAnnotations([]model.Annotation{{Start: 7, End: 9, Type: "pos", Subtype: "verb"}})
	lines, _ := transcript.ReadLines(strings.NewReader(s.Transcript()))
	if len(lines[0].SpanIDs) != 0 || len(lines[1].SpanIDs) != 1 {
		t.Errorf("previous markup should be replaced: %+v", lines)
	}
}

func TestApplyAnnotationsInvalid(t *testing.T) {
	s := loadHelloWorld(t)
	s.ApplyAnnotations([]model.Annotation{
		{Start: 4, End: 2, Type: "pos"},
		{Start: 0, End: 12, Type: "pos"},
		nounAnnotation,
	})

	if got := s.Annotations().Registry.Len(); got != 1 {
		t.Errorf("registered spans = %d, want 1", got)
	}
	warnings := s.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v", warnings)
	}
	for _, w := range warnings {
		if w.Source != WarnAnnotation {
			t.Errorf("warning source = %s", w.Source)
		}
	}
}

func TestApplyAnnotationsWithoutDocument(t *testing.T) {
	if err := testSession(t).ApplyAnnotations(nil); !errors.Is(err, ErrNoDocument) {
		t.Errorf("error = %v, want ErrNoDocument", err)
	}
}

func TestAnnotationTypeToggles(t *testing.T) {
	base := loadHelloWorld(t).Transcript()
	s := loadHelloWorld(t, nounAnnotation, model.Annotation{Start: 6, End: 11, Type: "ner", Subtype: "place"})

	s.SetAnnotationType("pos", false)
	lines, _ := transcript.ReadLines(strings.NewReader(s.Transcript()))
	if len(lines[0].SpanIDs) != 0 || len(lines[1].SpanIDs) != 1 {
		t.Errorf("pos should be hidden, ner shown: %+v", lines)
	}

	s.SetAllAnnotationTypes(false)
	if s.Transcript() != base {
		t.Error("no enabled types should render the base transcription")
	}

	s.SetAllAnnotationTypes(true)
	if s.Annotations().Registry.Len() != 2 {
		t.Errorf("spans = %d, want 2", s.Annotations().Registry.Len())
	}

	legend := s.Legend()
	if len(legend) != 2 || legend[0].Type != "ner" || legend[1].Type != "pos" {
		t.Errorf("legend = %+v", legend)
	}
}

func TestHiddenAnnotationTypes(t *testing.T) {
	s := New().
		Measurer(fixedMeasurer{}).
		Loader(newPageLoader(t)).
		HideAnnotationTypes("pos").
		NewSession()
	if err := s.LoadDocument(context.Background(), "page.png", helloWorldDoc(), []model.Annotation{nounAnnotation}); err != nil {
		t.Fatal(err)
	}
	if s.Annotations().Registry.Len() != 0 {
		t.Error("hidden type should not be applied")
	}
}

func TestDispatchSpan(t *testing.T) {
	s := loadHelloWorld(t, nounAnnotation)
	overlay := s.Sink().(*highlight.Overlay)

	if !s.DispatchSpan(annotate.Event{SpanID: "ann-0", LineID: "l1", Kind: annotate.PointerEnter}) {
		t.Fatal("dispatch to ann-0 failed")
	}
	tip, ok := overlay.Tooltip()
	if !ok {
		t.Fatal("tooltip not shown")
	}
	if tip.Header != "POS: noun" || tip.Category != "Part of Speech: noun" {
		t.Errorf("tooltip = %+v", tip)
	}
	if tip.DescriptionHTML != "<p>A <strong>common</strong> noun</p>" {
		t.Errorf("description = %q", tip.DescriptionHTML)
	}

	s.DispatchSpan(annotate.Event{SpanID: "ann-0", Kind: annotate.PointerLeave})
	if _, ok := overlay.Tooltip(); ok {
		t.Error("tooltip should be hidden")
	}

	if s.DispatchSpan(annotate.Event{SpanID: "ann-9", Kind: annotate.PointerEnter}) {
		t.Error("unknown span should not dispatch")
	}
}

// ============================================================================
// Highlight Tests
// ============================================================================

func TestHighlightLine(t *testing.T) {
	s := loadHelloWorld(t)
	overlay := s.Sink().(*highlight.Overlay)

	s.HighlightLine("l1")
	s.HighlightLine("l2")

	active, ok := overlay.Active()
	if !ok || active.ID != "l2" {
		t.Fatalf("active = %+v, %v", active, ok)
	}
	if overlay.Visible(highlight.Active, "l1") {
		t.Error("at most one line may be active")
	}
	if active.Box != (model.BBox{X: 0, Y: 150, Width: 100, Height: 20}) {
		t.Errorf("active box = %+v", active.Box)
	}

	lines, _ := transcript.ReadLines(strings.NewReader(s.Transcript()))
	if lines[0].Active || !lines[1].Active {
		t.Error("transcript should mark l2 active")
	}

	s.UnhighlightLine()
	if _, ok := overlay.Active(); ok || s.ActiveLine() != "" {
		t.Error("unhighlight should clear the active line")
	}

	if err := s.HighlightLine("nope"); !errors.Is(err, ErrUnknownLine) {
		t.Errorf("error = %v, want ErrUnknownLine", err)
	}
}

func TestHoverLine(t *testing.T) {
	s := loadHelloWorld(t)
	overlay := s.Sink().(*highlight.Overlay)

	if err := s.HoverLine("l1"); err != nil {
		t.Fatal(err)
	}
	if !overlay.Visible(highlight.Line, "l1") || !overlay.Visible(highlight.Region, "r1") {
		t.Error("hover should outline line and region")
	}

	s.HoverLine("l2")
	if overlay.Visible(highlight.Line, "l1") {
		t.Error("previous hover should be cleared")
	}

	s.LeaveLine()
	if len(overlay.Marks()) != 0 {
		t.Errorf("marks after leave = %+v", overlay.Marks())
	}
}

func TestSnapshot(t *testing.T) {
	s := loadHelloWorld(t)
	s.HighlightLine("l1")

	img, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 200 {
		t.Errorf("snapshot size = %v", img.Bounds())
	}

	if _, err := testSession(t).Snapshot(); !errors.Is(err, ErrNoDocument) {
		t.Errorf("error = %v, want ErrNoDocument", err)
	}
}

// ============================================================================
// Viewport Tests
// ============================================================================

func TestScrollSync(t *testing.T) {
	s := loadHelloWorld(t)

	line, ok := s.Scroll(viewport.ImageView, 0, 100)
	if !ok || line != "l2" {
		t.Fatalf("Scroll(image) = %q, %v; want l2", line, ok)
	}
	// l2 renders at 46..76 in a 40px view
	if got := s.TextViewport().ScrollY; got != 41 {
		t.Errorf("text scrollY = %v, want 41", got)
	}

	line, ok = s.Scroll(viewport.TextView, 0, 0)
	if !ok || line != "l1" {
		t.Fatalf("Scroll(text) = %q, %v; want l1", line, ok)
	}
	if got := s.ImageViewport().ScrollY; got != 0 {
		t.Errorf("image scrollY = %v, want 0", got)
	}
}

func TestToggleSync(t *testing.T) {
	s := loadHelloWorld(t)

	if s.ToggleSync(nil) {
		t.Fatal("ToggleSync(nil) should disable")
	}
	for i := 0; i < 5; i++ {
		if _, ok := s.Scroll(viewport.ImageView, 0, 100); ok {
			t.Fatal("disabled sync should not synchronize")
		}
	}
	if s.TextViewport().ScrollY != 0 {
		t.Error("text view moved while sync was off")
	}

	on := true
	if !s.ToggleSync(&on) {
		t.Error("ToggleSync(&true) should enable")
	}
}

func TestScrollToLine(t *testing.T) {
	s := loadHelloWorld(t)
	s.ToggleSync(nil)

	if err := s.ScrollToLine("l2"); err != nil {
		t.Fatal(err)
	}
	if s.ActiveLine() != "l2" {
		t.Error("ScrollToLine should activate the line")
	}
	if s.ImageViewport().ScrollY != 100 || s.TextViewport().ScrollY != 41 {
		t.Errorf("scroll = image %v text %v, want 100 and 41", s.ImageViewport().ScrollY, s.TextViewport().ScrollY)
	}

	if err := s.ScrollToLine("nope"); !errors.Is(err, ErrUnknownLine) {
		t.Errorf("error = %v, want ErrUnknownLine", err)
	}
}

func TestZoomAndFit(t *testing.T) {
	s := loadHelloWorld(t)

	if got := s.Zoom(10); got != viewport.MaxScale {
		t.Errorf("Zoom(10) = %v, want %v", got, viewport.MaxScale)
	}
	if got := s.FitPage(); got != 0.5 {
		t.Errorf("FitPage() = %v, want 0.5", got)
	}
	if got := s.FitWidth(); got != 1 {
		t.Errorf("FitWidth() = %v, want 1", got)
	}

	s.Scroll(viewport.ImageView, 0, 0)
	s.Pan(0, -50)
	if s.ImageViewport().ScrollY != 50 {
		t.Errorf("after Pan scrollY = %v, want 50", s.ImageViewport().ScrollY)
	}
}

// ============================================================================
// Viewer Tests
// ============================================================================

func TestViewerImmutable(t *testing.T) {
	base := New()
	custom := base.FontSize(24).PanelWidth(300).HideAnnotationTypes("morph")

	if base.options.fontSize != 16 || base.options.panel.Width != 480 {
		t.Errorf("base options modified: %+v", base.options)
	}
	if len(base.options.hiddenTypes) != 0 {
		t.Error("base hidden types modified")
	}
	if custom.options.fontSize != 24 || custom.options.panel.Width != 300 {
		t.Errorf("custom options = %+v", custom.options)
	}

	a := custom.HideAnnotationTypes("a")
	b := custom.HideAnnotationTypes("b")
	if a.options.hiddenTypes[1] != "a" || b.options.hiddenTypes[1] != "b" {
		t.Error("derived viewers share hidden types")
	}
}

func TestFormatWarnings(t *testing.T) {
	got := FormatWarnings([]Warning{
		{Source: WarnAnnotation, Message: "skipped"},
		{Source: WarnReadingOrder, Message: "appended r2"},
	})
	want := "annotation: skipped\nreading-order: appended r2"
	if got != want {
		t.Errorf("FormatWarnings() = %q, want %q", got, want)
	}
}
