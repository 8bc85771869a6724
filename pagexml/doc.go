// Package pagexml parses PAGE XML transcriptions, as exported by
// Transkribus and similar tools, into the document model.
//
// Only what the viewer needs is read: document metadata, the page image
// description, text regions with their polygons, text lines with polygon,
// baseline, words and text, and the reading order.
package pagexml
