package highlight

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tsawler/facsimile/model"
)

// PulsePeriod is the duration of one cycle of the active-line indicator
const PulsePeriod = 1200 * time.Millisecond

// Mark is one visible highlight
type Mark struct {
	Kind Kind
	ID   string
	Box  model.BBox
}

type markKey struct {
	kind Kind
	id   string
}

// Overlay is an in-memory Sink holding the set of visible highlights and
// the current tooltip. At most one Active mark exists at a time: showing a
// new one replaces the previous. Overlay is safe for concurrent use.
type Overlay struct {
	mu      sync.Mutex
	marks   map[markKey]model.BBox
	tooltip *Tooltip
}

// NewOverlay creates an empty overlay
func NewOverlay() *Overlay {
	return &Overlay{marks: make(map[markKey]model.BBox)}
}

// Show implements Sink
func (o *Overlay) Show(kind Kind, id string, box model.BBox) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if kind == Active {
		for k := range o.marks {
			if k.kind == Active {
				delete(o.marks, k)
			}
		}
	}
	o.marks[markKey{kind, id}] = box
}

// Hide implements Sink
func (o *Overlay) Hide(kind Kind, id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.marks, markKey{kind, id})
}

// HideAll implements Sink. The tooltip is left alone.
func (o *Overlay) HideAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.marks = make(map[markKey]model.BBox)
}

// ShowTooltip implements Sink
func (o *Overlay) ShowTooltip(tip Tooltip) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tooltip = &tip
}

// HideTooltip implements Sink
func (o *Overlay) HideTooltip() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tooltip = nil
}

// Marks returns the visible highlights ordered by kind, then id
func (o *Overlay) Marks() []Mark {
	o.mu.Lock()
	defer o.mu.Unlock()
	marks := make([]Mark, 0, len(o.marks))
	for k, box := range o.marks {
		marks = append(marks, Mark{Kind: k.kind, ID: k.id, Box: box})
	}
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].Kind != marks[j].Kind {
			return marks[i].Kind < marks[j].Kind
		}
		return marks[i].ID < marks[j].ID
	})
	return marks
}

// Visible reports whether a highlight is shown
func (o *Overlay) Visible(kind Kind, id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.marks[markKey{kind, id}]
	return ok
}

// Active returns the active mark, if any
func (o *Overlay) Active() (Mark, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for k, box := range o.marks {
		if k.kind == Active {
			return Mark{Kind: Active, ID: k.id, Box: box}, true
		}
	}
	return Mark{}, false
}

// Tooltip returns the tooltip currently shown
func (o *Overlay) Tooltip() (Tooltip, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tooltip == nil {
		return Tooltip{}, false
	}
	return *o.tooltip, true
}

// Pulse returns the opacity of the active indicator at time t since the
// highlight was activated, oscillating between 0.35 and 1.
func Pulse(t time.Duration) float64 {
	phase := float64(t%PulsePeriod) / float64(PulsePeriod)
	return 0.675 + 0.325*math.Cos(2*math.Pi*phase)
}
