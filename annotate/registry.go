package annotate

import (
	"sort"

	"github.com/tsawler/facsimile/highlight"
	"github.com/tsawler/facsimile/model"
)

// EventKind is a pointer interaction on an annotation span
type EventKind int

const (
	PointerEnter EventKind = iota
	PointerLeave
)

// Event is a pointer interaction routed to the registry by span id
type Event struct {
	SpanID string
	LineID string
	Kind   EventKind
}

// Entry is the metadata behind one rendered span id
type Entry struct {
	SpanID     string
	Index      int
	Annotation model.Annotation
}

// Registry maps span ids to annotation metadata so that one delegated
// handler can serve every rendered span.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

func (r *Registry) register(spanID string, index int, ann model.Annotation) {
	r.entries[spanID] = Entry{SpanID: spanID, Index: index, Annotation: ann}
}

// Lookup returns the entry for a span id
func (r *Registry) Lookup(spanID string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[spanID]
	return e, ok
}

// Len returns the number of registered spans
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// SpanIDs returns the registered span ids, sorted
func (r *Registry) SpanIDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dispatch turns a pointer event into a tooltip request on sink.
// Unknown span ids are ignored.
func (r *Registry) Dispatch(ev Event, tips *TooltipBuilder, sink highlight.Sink) bool {
	if ev.Kind == PointerLeave {
		sink.HideTooltip()
		return true
	}
	entry, ok := r.Lookup(ev.SpanID)
	if !ok {
		return false
	}
	tip := tips.Build(entry.Annotation)
	tip.SpanID = entry.SpanID
	tip.LineID = ev.LineID
	sink.ShowTooltip(tip)
	return true
}
