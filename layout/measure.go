package layout

import (
	"bytes"
	"fmt"
	"sync"

	gotextfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the horizontal advance of a run of text and the height
// of one rendered row in the transcription panel, both in panel pixels.
type Measurer interface {
	Advance(s string) float64
	LineHeight() float64
}

// FaceMeasurer measures text with a golang.org/x/image/font Face.
// font.Face is not safe for concurrent use, so calls are serialized.
type FaceMeasurer struct {
	mu   sync.Mutex
	face font.Face
}

// NewFaceMeasurer wraps an existing font face
func NewFaceMeasurer(face font.Face) *FaceMeasurer {
	return &FaceMeasurer{face: face}
}

// NewGoRegularMeasurer returns a measurer for the Go Regular font at the
// given size in points (72 DPI, so points equal pixels).
func NewGoRegularMeasurer(size float64) (*FaceMeasurer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go Regular: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return NewFaceMeasurer(face), nil
}

// DefaultMeasurer returns Go Regular at 16px, falling back to the fixed
// 7x13 bitmap face if the embedded font cannot be loaded.
func DefaultMeasurer() Measurer {
	m, err := NewGoRegularMeasurer(16)
	if err != nil {
		return NewFaceMeasurer(basicfont.Face7x13)
	}
	return m
}

// Advance implements Measurer
func (m *FaceMeasurer) Advance(s string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fixedToFloat(font.MeasureString(m.face, s))
}

// LineHeight implements Measurer
func (m *FaceMeasurer) LineHeight() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fixedToFloat(m.face.Metrics().Height)
}

// ShapingMeasurer measures text with HarfBuzz shaping from
// go-text/typesetting, which accounts for kerning and ligatures.
// HarfbuzzShaper and font.Face keep mutable state, so calls are serialized.
type ShapingMeasurer struct {
	mu     sync.Mutex
	shaper shaping.HarfbuzzShaper
	face   *gotextfont.Face
	size   fixed.Int26_6
	lang   language.Language
	height float64
}

// NewShapingMeasurer parses TrueType/OpenType data and returns a measurer
// at the given pixel size. A nil fontData selects Go Regular.
func NewShapingMeasurer(fontData []byte, size float64) (*ShapingMeasurer, error) {
	if fontData == nil {
		fontData = goregular.TTF
	}
	face, err := gotextfont.ParseTTF(bytes.NewReader(fontData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	m := &ShapingMeasurer{
		face: face,
		size: floatToFixed(size),
		lang: language.NewLanguage("en"),
	}

	// Line bounds are a property of the font, so shape a sample once.
	out := m.shape([]rune("Hg"))
	b := out.LineBounds
	m.height = fixedToFloat(b.Ascent - b.Descent + b.Gap)
	if m.height <= 0 {
		m.height = size * 1.2
	}
	return m, nil
}

// Advance implements Measurer
func (m *ShapingMeasurer) Advance(s string) float64 {
	if s == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fixedToFloat(m.shape([]rune(s)).Advance)
}

// LineHeight implements Measurer
func (m *ShapingMeasurer) LineHeight() float64 {
	return m.height
}

func (m *ShapingMeasurer) shape(runes []rune) shaping.Output {
	script := language.Latin
	for _, r := range runes {
		if r != ' ' && r != '\t' {
			script = language.LookupScript(r)
			break
		}
	}
	return m.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      m.face,
		Size:      m.size,
		Script:    script,
		Language:  m.lang,
	})
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
