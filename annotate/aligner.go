package annotate

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/tsawler/facsimile/mapping"
	"github.com/tsawler/facsimile/model"
)

// Split is one annotation applied to one line: the original line text cut
// into the unannotated prefix, the annotated span and the unannotated
// suffix. Prefix+Span+Suffix always equals the original line text.
type Split struct {
	SpanID     string
	Index      int // position of the annotation in the input slice
	Annotation model.Annotation
	LineID     string
	LineIndex  int // position of the line in the offset map
	LocalStart int // rune offsets within the line
	LocalEnd   int
	Prefix     string
	Span       string
	Suffix     string
}

// Segment is a run of a line's text covered by the same set of annotations
type Segment struct {
	Text   string
	Start  int      // rune offsets within the line
	End    int
	Layers []string // span ids covering the run, outermost first
}

// LineMarkup is the composited markup of one affected line
type LineMarkup struct {
	LineID   string
	Text     string // original line text
	Segments []Segment
}

// PlainText concatenates the segment texts
func (l *LineMarkup) PlainText() string {
	var n int
	for _, s := range l.Segments {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range l.Segments {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// Result is the outcome of aligning one annotation set against a document
type Result struct {
	Splits   []Split
	Lines    map[string]*LineMarkup
	Registry *Registry
	Warnings []string
	Skipped  int // annotations rejected as invalid
}

// Affected returns the ids of lines that received markup, in offset order
func (r *Result) Affected(offsets *mapping.OffsetMap) []string {
	var ids []string
	for _, span := range offsets.Lines() {
		if _, ok := r.Lines[span.LineID]; ok {
			ids = append(ids, span.LineID)
		}
	}
	return ids
}

// Aligner resolves annotation offset ranges to per-line markup
type Aligner struct {
	logger *slog.Logger
}

// NewAligner creates an aligner that reports skipped annotations to logger.
// A nil logger discards them.
func NewAligner(logger *slog.Logger) *Aligner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aligner{logger: logger}
}

// Align applies annotations to the lines of the offset map.
//
// Annotations are grouped by type (types in ascending order) and processed
// by ascending start within a type; types switched off in toggles are
// skipped entirely. An annotation whose start or end falls outside
// [0, Total) or whose start is not before its end is skipped with a
// warning. Every split is computed against the line's original text, so
// earlier annotations never alter the base text seen by later ones.
func (a *Aligner) Align(offsets *mapping.OffsetMap, annotations []model.Annotation, toggles *Toggles) *Result {
	result := &Result{
		Lines:    make(map[string]*LineMarkup),
		Registry: NewRegistry(),
	}
	if offsets == nil || len(annotations) == 0 {
		return result
	}

	groups := make(map[string][]int)
	for i, ann := range annotations {
		groups[ann.Type] = append(groups[ann.Type], i)
	}
	types := make([]string, 0, len(groups))
	for typ := range groups {
		types = append(types, typ)
	}
	sort.Strings(types)

	lines := offsets.Lines()
	total := offsets.Total()

	for _, typ := range types {
		if !toggles.Enabled(typ) {
			continue
		}
		idxs := groups[typ]
		sort.SliceStable(idxs, func(i, j int) bool {
			return annotations[idxs[i]].Start < annotations[idxs[j]].Start
		})

		for _, idx := range idxs {
			ann := annotations[idx]
			if err := validate(ann, total); err != nil {
				msg := fmt.Sprintf("annotation %d (%s/%s) skipped: %v", idx, ann.Type, ann.Subtype, err)
				a.logger.Warn("annotation skipped",
					"index", idx, "type", ann.Type, "subtype", ann.Subtype,
					"start", ann.Start, "end", ann.End, "error", err)
				result.Warnings = append(result.Warnings, msg)
				result.Skipped++
				continue
			}

			first, _ := offsets.LineIndexAt(ann.Start)
			last, _ := offsets.LineIndexAt(ann.End - 1)
			spanID := fmt.Sprintf("ann-%d", idx)
			applied := false

			for li := first; li <= last; li++ {
				split, ok := splitLine(lines[li], ann)
				if !ok {
					continue
				}
				split.SpanID = spanID
				split.Index = idx
				split.LineIndex = li
				result.Splits = append(result.Splits, split)
				applied = true
			}

			if applied {
				result.Registry.register(spanID, idx, ann)
			}
		}
	}

	composite(result, offsets)
	return result
}

func validate(ann model.Annotation, total int) error {
	if ann.Start < 0 || ann.Start >= total {
		return fmt.Errorf("start %d outside [0, %d)", ann.Start, total)
	}
	if ann.End < 0 || ann.End >= total {
		return fmt.Errorf("end %d outside [0, %d)", ann.End, total)
	}
	if ann.Start >= ann.End {
		return fmt.Errorf("start %d not before end %d", ann.Start, ann.End)
	}
	return nil
}

// splitLine cuts one line around the part of ann that falls inside it.
// A line inside the candidate range is not affected when the annotation
// only touches its break.
func splitLine(line mapping.LineSpan, ann model.Annotation) (Split, bool) {
	localStart := max(0, ann.Start-line.GlobalStart)
	localEnd := min(line.Length, ann.End-line.GlobalStart)
	if localEnd <= 0 || localStart >= line.Length {
		return Split{}, false
	}

	runes := []rune(line.Text)
	return Split{
		Annotation: ann,
		LineID:     line.LineID,
		LocalStart: localStart,
		LocalEnd:   localEnd,
		Prefix:     string(runes[:localStart]),
		Span:       string(runes[localStart:localEnd]),
		Suffix:     string(runes[localEnd:]),
	}, true
}

// composite merges all splits of each line into one segmentation of the
// original text. Overlapping annotations stack on the shared runs instead
// of the later one replacing the earlier.
func composite(result *Result, offsets *mapping.OffsetMap) {
	lines := offsets.Lines()
	byLine := make(map[int][]Split)
	for _, s := range result.Splits {
		byLine[s.LineIndex] = append(byLine[s.LineIndex], s)
	}

	for li, splits := range byLine {
		span := lines[li]
		lineID := span.LineID
		runes := []rune(span.Text)

		sort.SliceStable(splits, func(i, j int) bool {
			if splits[i].LocalStart != splits[j].LocalStart {
				return splits[i].LocalStart < splits[j].LocalStart
			}
			return splits[i].LocalEnd > splits[j].LocalEnd
		})

		bounds := []int{0, len(runes)}
		for _, s := range splits {
			bounds = append(bounds, s.LocalStart, s.LocalEnd)
		}
		sort.Ints(bounds)

		markup := &LineMarkup{LineID: lineID, Text: span.Text}
		for i := 1; i < len(bounds); i++ {
			lo, hi := bounds[i-1], bounds[i]
			if lo == hi {
				continue
			}
			seg := Segment{Text: string(runes[lo:hi]), Start: lo, End: hi}
			for _, s := range splits {
				if s.LocalStart <= lo && s.LocalEnd >= hi {
					seg.Layers = append(seg.Layers, s.SpanID)
				}
			}
			markup.Segments = append(markup.Segments, seg)
		}
		result.Lines[lineID] = markup
	}
}
