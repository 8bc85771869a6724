// Package annotate aligns externally supplied annotations with the lines of
// a transcription.
//
// An annotation names a half-open range of global offsets (see package
// mapping). [Aligner.Align] finds the lines the range spans, converts the
// range to line-local offsets and cuts each affected line into prefix,
// annotated span and suffix:
//
//	aligner := annotate.NewAligner(logger)
//	result := aligner.Align(offsets, annotations, toggles)
//	for _, s := range result.Splits {
//	    fmt.Printf("%s: %q [%q] %q\n", s.LineID, s.Prefix, s.Span, s.Suffix)
//	}
//
// Invalid annotations are skipped with a warning and never abort the set.
//
// # Overlapping annotations
//
// Splits are always computed against the original line text. For display,
// the splits of a line are composited into [Segment] runs, each carrying
// every span id that covers it, so overlapping annotations of different
// types nest instead of replacing one another.
//
// # Interaction
//
// Rendered spans carry only their span id. A single [Registry] resolves
// ids back to annotation metadata and turns pointer events into tooltip
// requests on a highlight.Sink.
package annotate
