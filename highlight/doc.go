// Package highlight is the rendering sink for visual emphasis on the page
// image: region outlines, line outlines, the pulsing active-line indicator
// and annotation tooltips.
//
// Producers talk to a [Sink] and never read state back from it. [Overlay]
// is the in-memory implementation used by sessions; [Rasterize] paints an
// overlay's marks onto the page image with golang.org/x/image/vector.
package highlight
