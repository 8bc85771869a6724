// Package layout resolves the reading order of a transcription and lays its
// lines out in the text panel.
//
// # Reading Order
//
// [ReadingOrderResolver] linearizes the regions of a document. A declared
// reading order is honored after repair (unknown and duplicate references
// are dropped, unreferenced regions appended); without one, regions are
// sorted geometrically top-to-bottom with a vertical tolerance before
// falling back to horizontal order:
//
//	result := layout.NewReadingOrderResolver().Resolve(doc)
//	for _, region := range result.Regions {
//	    fmt.Println(region.ID)
//	}
//
// # Text Panel
//
// [TextPanel] computes where each line lands in the rendered transcription
// panel, given a [Measurer]. Two measurers are provided:
//
//   - [FaceMeasurer] - golang.org/x/image/font faces (Go Regular by default)
//   - [ShapingMeasurer] - HarfBuzz shaping via go-text/typesetting
//
// The resulting [LineMetrics] feed the position and offset maps.
package layout
