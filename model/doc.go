// Package model provides the data structures shared by every stage of the
// facsimile viewer: image-space geometry, the parsed transcription and the
// externally supplied annotations.
//
// # Document Structure
//
// A [Document] holds the [Page] image description, an ordered list of
// [TextRegion] values each owning its [Line] values, and the reading order
// (region ids) that defines the canonical linearization of the text.
//
// # Geometry
//
// Coordinates are image-space pixels with Y growing downward:
//
//   - [Point] - 2D point with distance calculation
//   - [BBox] - axis-aligned box with center, union and intersection helpers
//   - [BoundingBox] - derives a BBox from a polygon; empty polygons yield the zero box
//
// Bounding boxes are always recomputed from polygons and never stored.
//
// # Annotations
//
// An [Annotation] tags a half-open offset range [Start, End) of the
// linearized text. Offsets are counted in Unicode code points with one
// extra unit after every line for the line break.
package model
