package annotate

import (
	"sort"
	"sync"
)

// Toggles holds the UI state of which annotation types are shown.
// Types never mentioned follow the default, which starts enabled.
// Toggles is safe for concurrent use.
type Toggles struct {
	mu        sync.RWMutex
	states    map[string]bool
	defaultOn bool
}

// NewToggles returns toggles with every type enabled
func NewToggles() *Toggles {
	return &Toggles{states: make(map[string]bool), defaultOn: true}
}

// Enabled reports whether annotations of typ should be rendered.
// A nil Toggles enables everything.
func (t *Toggles) Enabled(typ string) bool {
	if t == nil {
		return true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if on, ok := t.states[typ]; ok {
		return on
	}
	return t.defaultOn
}

// Set enables or disables one type
func (t *Toggles) Set(typ string, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[typ] = on
}

// Flip inverts the state of one type and returns the new state
func (t *Toggles) Flip(typ string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	on, ok := t.states[typ]
	if !ok {
		on = t.defaultOn
	}
	t.states[typ] = !on
	return !on
}

// DisableAll turns every type off, including types not seen yet
func (t *Toggles) DisableAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = make(map[string]bool)
	t.defaultOn = false
}

// EnableAll turns every type on, including types not seen yet
func (t *Toggles) EnableAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = make(map[string]bool)
	t.defaultOn = true
}

// Disabled returns the explicitly disabled types, sorted
func (t *Toggles) Disabled() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for typ, on := range t.states {
		if !on {
			out = append(out, typ)
		}
	}
	sort.Strings(out)
	return out
}
