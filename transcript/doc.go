// Package transcript renders the transcription panel as HTML.
//
// The base transcription is one container per region, in reading order,
// holding one container per line with the line's text. Annotated lines
// replace the text with the composited segments of an annotate.Result;
// each annotation covering a segment becomes a nested span carrying its
// span id, type, subtype and metadata as data attributes:
//
//	<div class="transcription-region" data-region-id="r1">
//	  <div class="transcription-line" data-line-id="l1">H<span
//	    class="annotation ner-person" data-span-id="ann-0" ...>ell</span>o</div>
//	</div>
//
// Span ids key into the annotate.Registry, so a single delegated handler
// serves every span. [ReadLines] parses a rendered panel back into lines.
package transcript
