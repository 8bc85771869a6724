// Package format sniffs the kind of input file handed to facsimile: a PAGE
// XML transcription, a page image or a JSON annotation set.
package format

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is the kind of an input file.
type Format int

const (
	// Unknown indicates an unrecognized input.
	Unknown Format = iota
	// PageXML indicates a PAGE XML transcription.
	PageXML
	// Image indicates a raster page image.
	Image
	// JSON indicates a JSON document, such as an annotation set.
	JSON
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case PageXML:
		return "PAGE XML"
	case Image:
		return "image"
	case JSON:
		return "JSON"
	default:
		return "unknown"
	}
}

// Detect determines the format from a filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return PageXML
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return Image
	case ".json":
		return JSON
	default:
		return Unknown
	}
}

// sniffLen is how much of a file DetectFromMagic needs to see.
const sniffLen = 512

var imageMagic = [][]byte{
	[]byte("\x89PNG\r\n\x1a\n"),
	[]byte("\xff\xd8\xff"),
	[]byte("GIF87a"),
	[]byte("GIF89a"),
	[]byte("BM"),
	[]byte("II*\x00"),
	[]byte("MM\x00*"),
}

// DetectFromMagic checks leading bytes to determine the format. It is more
// reliable than the extension, and returns Unknown when the bytes say
// nothing conclusive.
func DetectFromMagic(data []byte) Format {
	for _, m := range imageMagic {
		if bytes.HasPrefix(data, m) {
			return Image
		}
	}
	if len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return Image
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return Unknown
	}
	switch trimmed[0] {
	case '{', '[':
		return JSON
	case '<':
		// the root element may follow a declaration and comments
		if bytes.Contains(data, []byte("<PcGts")) || bytes.Contains(data, []byte(":PcGts")) {
			return PageXML
		}
	}
	return Unknown
}

// DetectFromReader reads the start of r and sniffs it. Use DetectFile to
// fall back to the file extension.
func DetectFromReader(r io.Reader) (Format, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unknown, err
	}
	return DetectFromMagic(buf[:n]), nil
}

// DetectFile sniffs the file at path, using its extension when the
// content is inconclusive.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	got, err := DetectFromReader(f)
	if err != nil {
		return Unknown, err
	}
	if got == Unknown {
		got = Detect(path)
	}
	return got, nil
}
