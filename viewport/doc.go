// Package viewport models the two scrollable views of the viewer, the
// zoomable facsimile image and the transcription panel, and keeps them
// synchronized.
//
// When the user scrolls one view, [Synchronizer.OnScroll] finds the line
// nearest to that view's center (Euclidean distance between box centers
// for the image, vertical distance for the text) and centers the same
// line in the other view. Every scroll carries an [Origin]; scrolls the
// synchronizer makes itself are tagged Sync and never trigger another
// synchronization, which is what stops the two views from oscillating.
//
// The nearest-line search is a linear scan of the position map, fine for
// single pages; multi-page documents with thousands of lines would want a
// spatial index.
package viewport
