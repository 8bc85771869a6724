// Package mapping builds the two parallel indices derived from a parsed
// document: the position map, which ties each line's image-space bounding
// box to its rendered place in the text panel, and the character offset
// map, which assigns every character a document-wide offset.
//
// Both maps are rebuilt from scratch on every document load:
//
//	positions := mapping.BuildPositionMap(regions, panelLayout)
//	offsets := mapping.BuildOffsetMap(regions, panelLayout)
//
// In the offset map each line of length L owns L+1 consecutive offsets;
// the last one is a synthetic line break. Adjacent entries always differ
// by exactly one, and an empty line still owns its break, so every offset
// in range identifies exactly one line.
package mapping
