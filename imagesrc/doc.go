// Package imagesrc loads facsimile page images and discovers their
// intrinsic dimensions.
//
// A [Fetcher] accepts local paths, file:// and http(s):// URLs and base64
// data: URLs. PNG, JPEG and GIF are decoded by the standard library; TIFF,
// BMP and WebP, common for archival scans, by golang.org/x/image. Only the
// image header is decoded on load; [Image.Decode] decodes the pixels when
// an overlay is rasterized.
package imagesrc
