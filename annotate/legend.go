package annotate

import (
	"sort"

	"github.com/tsawler/facsimile/model"
)

// LegendEntry summarizes one annotation type of an annotation set
type LegendEntry struct {
	Type     string
	Subtypes []string // distinct, sorted
	Count    int
	Enabled  bool
}

// Legend lists the annotation types present in annotations, sorted by
// type, with the toggle state of each.
func Legend(annotations []model.Annotation, toggles *Toggles) []LegendEntry {
	byType := make(map[string]map[string]bool)
	counts := make(map[string]int)
	for _, a := range annotations {
		if byType[a.Type] == nil {
			byType[a.Type] = make(map[string]bool)
		}
		if a.Subtype != "" {
			byType[a.Type][a.Subtype] = true
		}
		counts[a.Type]++
	}

	legend := make([]LegendEntry, 0, len(byType))
	for typ, subs := range byType {
		entry := LegendEntry{Type: typ, Count: counts[typ], Enabled: toggles.Enabled(typ)}
		for s := range subs {
			entry.Subtypes = append(entry.Subtypes, s)
		}
		sort.Strings(entry.Subtypes)
		legend = append(legend, entry)
	}
	sort.Slice(legend, func(i, j int) bool { return legend[i].Type < legend[j].Type })
	return legend
}
