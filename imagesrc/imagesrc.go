package imagesrc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// MaxSize caps the bytes read from any source
const MaxSize = 256 << 20

// ErrUnsupportedScheme is returned for URLs the fetcher cannot open
var ErrUnsupportedScheme = errors.New("unsupported image URL scheme")

// Image is a loaded page image. Only its header has been decoded; the
// pixels are decoded on demand.
type Image struct {
	URL    string
	Width  int
	Height int
	Format string
	data   []byte
}

// Decode decodes the pixels
func (img *Image) Decode() (image.Image, error) {
	m, _, err := image.Decode(bytes.NewReader(img.data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s image: %w", img.Format, err)
	}
	return m, nil
}

// Bytes returns the encoded image
func (img *Image) Bytes() []byte { return img.data }

// Loader loads a page image and reports its intrinsic size. Loading is
// the one step of opening a document that waits on I/O.
type Loader interface {
	Load(ctx context.Context, rawURL string) (*Image, error)
}

// Fetcher loads images from local paths, file:// and http(s):// URLs and
// base64 data: URLs.
type Fetcher struct {
	Client *http.Client
}

// NewFetcher creates a fetcher with a 30 second HTTP timeout
func NewFetcher() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Load reads the image at rawURL and decodes its dimensions
func (f *Fetcher) Load(ctx context.Context, rawURL string) (*Image, error) {
	data, err := f.read(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return FromBytes(rawURL, data)
}

// FromBytes decodes the header of an encoded image
func FromBytes(name string, data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header of %s: %w", shorten(name), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image %s has no area (%dx%d)", shorten(name), cfg.Width, cfg.Height)
	}
	return &Image{URL: name, Width: cfg.Width, Height: cfg.Height, Format: format, data: data}, nil
}

func (f *Fetcher) read(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return decodeDataURL(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain path, including Windows drive letters
		return readFile(rawURL)
	}

	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return f.download(ctx, u.String())
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading image: HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSize))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxSize))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>
func decodeDataURL(rawURL string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(rawURL, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL: missing comma")
	}
	if !strings.HasSuffix(header, ";base64") {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data URL: %w", err)
		}
		return []byte(s), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URL: %w", err)
	}
	return data, nil
}

func shorten(name string) string {
	if strings.HasPrefix(name, "data:") && len(name) > 40 {
		return name[:40] + "..."
	}
	return name
}
