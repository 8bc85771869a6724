package layout

import (
	"fmt"
	"sort"

	"github.com/tsawler/facsimile/model"
)

// ReadingDirection indicates the horizontal reading direction used to break
// ties between regions that sit on the same visual row
type ReadingDirection int

const (
	// LeftToRight is the default for most Western languages
	LeftToRight ReadingDirection = iota
	// RightToLeft is used for Arabic, Hebrew, etc.
	RightToLeft
)

// String returns a string representation of the reading direction
func (d ReadingDirection) String() string {
	if d == RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// ReadingOrderConfig holds configuration for reading order resolution
type ReadingOrderConfig struct {
	// Direction is the horizontal reading direction for same-row regions
	Direction ReadingDirection

	// VerticalTolerance is the maximum difference between two region tops
	// (image-space units) for them to be considered on the same row.
	// Default: 50
	VerticalTolerance float64
}

// DefaultReadingOrderConfig returns sensible default configuration
func DefaultReadingOrderConfig() ReadingOrderConfig {
	return ReadingOrderConfig{
		Direction:         LeftToRight,
		VerticalTolerance: 50,
	}
}

// ReadingOrderResult holds the linearized regions and any repairs made
// to the declared reading order
type ReadingOrderResult struct {
	// Regions in reading order; pointers into the source document
	Regions []*model.TextRegion

	// Geometric is true when the order was derived from region geometry
	Geometric bool

	// Warnings describe dropped or appended region references
	Warnings []string
}

// ReadingOrderResolver linearizes the regions of a document
type ReadingOrderResolver struct {
	config ReadingOrderConfig
}

// NewReadingOrderResolver creates a resolver with default configuration
func NewReadingOrderResolver() *ReadingOrderResolver {
	return &ReadingOrderResolver{config: DefaultReadingOrderConfig()}
}

// NewReadingOrderResolverWithConfig creates a resolver with custom configuration
func NewReadingOrderResolverWithConfig(config ReadingOrderConfig) *ReadingOrderResolver {
	return &ReadingOrderResolver{config: config}
}

// Resolve returns the document regions in reading order.
//
// A declared order must reference every region exactly once. Unknown ids
// and repeated references are dropped, and regions the order never names
// are appended in geometric order. Without a declared order the regions
// are sorted top-to-bottom, then by reading direction within a row.
func (r *ReadingOrderResolver) Resolve(doc *model.Document) *ReadingOrderResult {
	result := &ReadingOrderResult{}
	if doc == nil || len(doc.Regions) == 0 {
		return result
	}

	if len(doc.ReadingOrder) == 0 {
		result.Geometric = true
		result.Regions = r.geometric(allRegions(doc))
		return result
	}

	byID := make(map[string]*model.TextRegion, len(doc.Regions))
	for i := range doc.Regions {
		byID[doc.Regions[i].ID] = &doc.Regions[i]
	}

	seen := make(map[string]bool, len(doc.Regions))
	for _, id := range doc.ReadingOrder {
		region, ok := byID[id]
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("reading order references unknown region %q", id))
			continue
		}
		if seen[id] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("reading order references region %q more than once", id))
			continue
		}
		seen[id] = true
		result.Regions = append(result.Regions, region)
	}

	var missing []*model.TextRegion
	for i := range doc.Regions {
		if !seen[doc.Regions[i].ID] {
			missing = append(missing, &doc.Regions[i])
		}
	}
	for _, region := range r.geometric(missing) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("region %q missing from reading order, appended", region.ID))
		result.Regions = append(result.Regions, region)
	}

	return result
}

// geometric sorts regions top-to-bottom into rows and each row by the
// reading direction. A row starts at the topmost remaining region and takes
// every region whose top is less than the vertical tolerance below it.
// Only exact geometric ties fall back to document order.
func (r *ReadingOrderResolver) geometric(regions []*model.TextRegion) []*model.TextRegion {
	type item struct {
		region *model.TextRegion
		box    model.BBox
	}
	items := make([]item, len(regions))
	for i, region := range regions {
		items[i] = item{region: region, box: region.BBox()}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].box, items[j].box
		if a.Top() != b.Top() {
			return a.Top() < b.Top()
		}
		return a.Left() < b.Left()
	})

	byDirection := func(row []item) func(i, j int) bool {
		return func(i, j int) bool {
			a, b := row[i].box, row[j].box
			if r.config.Direction == RightToLeft {
				return a.Right() > b.Right()
			}
			return a.Left() < b.Left()
		}
	}

	sorted := make([]*model.TextRegion, 0, len(items))
	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && items[end].box.Top()-items[start].box.Top() < r.config.VerticalTolerance {
			end++
		}
		row := items[start:end]
		sort.SliceStable(row, byDirection(row))
		for _, it := range row {
			sorted = append(sorted, it.region)
		}
		start = end
	}
	return sorted
}

func allRegions(doc *model.Document) []*model.TextRegion {
	regions := make([]*model.TextRegion, len(doc.Regions))
	for i := range doc.Regions {
		regions[i] = &doc.Regions[i]
	}
	return regions
}
