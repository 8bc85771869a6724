package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "FACSIMILE_"

// Defaults returns a Config with safe defaults. Inputs have none.
func Defaults() Config {
	return Config{
		Panel: Panel{
			Width:    480,
			FontSize: 16,
		},
		Viewport: Viewport{
			ImageWidth:  800,
			ImageHeight: 800,
			TextWidth:   480,
			TextHeight:  800,
		},
		ReadingOrder: ReadingOrder{
			Direction:         "ltr",
			VerticalTolerance: 50,
		},
		Logging: Logging{Level: "warn"},
	}
}

// LoadJSON parses a Config from a file path or raw JSON, rejecting
// unknown fields
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Merge overlays over onto base. Zero values in over do not override.
func Merge(base, over Config) Config {
	out := base

	if s := strings.TrimSpace(over.Page); s != "" {
		out.Page = s
	}
	if s := strings.TrimSpace(over.Image); s != "" {
		out.Image = s
	}
	if s := strings.TrimSpace(over.Annotations); s != "" {
		out.Annotations = s
	}

	if over.Output.HTML != "" {
		out.Output.HTML = over.Output.HTML
	}
	if over.Output.PNG != "" {
		out.Output.PNG = over.Output.PNG
	}

	if over.Panel.Width != 0 {
		out.Panel.Width = over.Panel.Width
	}
	if over.Panel.FontSize != 0 {
		out.Panel.FontSize = over.Panel.FontSize
	}
	if over.Panel.Font != "" {
		out.Panel.Font = over.Panel.Font
	}

	if over.Viewport.ImageWidth != 0 {
		out.Viewport.ImageWidth = over.Viewport.ImageWidth
	}
	if over.Viewport.ImageHeight != 0 {
		out.Viewport.ImageHeight = over.Viewport.ImageHeight
	}
	if over.Viewport.TextWidth != 0 {
		out.Viewport.TextWidth = over.Viewport.TextWidth
	}
	if over.Viewport.TextHeight != 0 {
		out.Viewport.TextHeight = over.Viewport.TextHeight
	}

	if s := strings.TrimSpace(over.ReadingOrder.Direction); s != "" {
		out.ReadingOrder.Direction = s
	}
	if over.ReadingOrder.VerticalTolerance != 0 {
		out.ReadingOrder.VerticalTolerance = over.ReadingOrder.VerticalTolerance
	}

	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}

	// hidden types replace, not append
	if len(over.HiddenTypes) > 0 {
		out.HiddenTypes = cloneStrings(over.HiddenTypes)
	}
	if s := strings.TrimSpace(over.Language); s != "" {
		out.Language = s
	}
	if s := strings.TrimSpace(over.Line); s != "" {
		out.Line = s
	}
	return out
}

// EnvOverlay builds an override from FACSIMILE_* environment variables.
// Unknown keys and unparsable numbers are ignored.
func EnvOverlay(environ []string) Config {
	var over Config
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		switch strings.TrimPrefix(key, EnvPrefix) {
		case "PAGE":
			over.Page = val
		case "IMAGE":
			over.Image = val
		case "ANNOTATIONS":
			over.Annotations = val
		case "OUTPUT_HTML":
			over.Output.HTML = val
		case "OUTPUT_PNG":
			over.Output.PNG = val
		case "PANEL_WIDTH":
			over.Panel.Width = atof(val)
		case "PANEL_FONT_SIZE":
			over.Panel.FontSize = atof(val)
		case "PANEL_FONT":
			over.Panel.Font = val
		case "READING_ORDER_DIRECTION":
			over.ReadingOrder.Direction = val
		case "LOG_LEVEL":
			over.Logging.Level = val
		case "HIDDEN_TYPES":
			over.HiddenTypes = splitComma(val)
		case "LANGUAGE":
			over.Language = val
		}
	}
	return over
}

func atof(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
