package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/tsawler/facsimile"
	"github.com/tsawler/facsimile/layout"
)

// Validate checks the static bounds of a merged configuration
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Page) == "" {
		return errors.New("config: page not set")
	}
	if cfg.Panel.Width <= 0 {
		return errors.New("config: panel.width must be > 0")
	}
	if cfg.Panel.FontSize <= 0 {
		return errors.New("config: panel.font_size must be > 0")
	}
	if cfg.Viewport.ImageWidth <= 0 || cfg.Viewport.ImageHeight <= 0 {
		return errors.New("config: image viewport must have a positive size")
	}
	if cfg.Viewport.TextWidth <= 0 || cfg.Viewport.TextHeight <= 0 {
		return errors.New("config: text viewport must have a positive size")
	}
	switch cfg.ReadingOrder.Direction {
	case "", "ltr", "rtl":
	default:
		return fmt.Errorf("config: reading_order.direction %q is not ltr or rtl", cfg.ReadingOrder.Direction)
	}
	if cfg.ReadingOrder.VerticalTolerance < 0 {
		return errors.New("config: reading_order.vertical_tolerance must be >= 0")
	}
	if _, err := ParseLevel(cfg.Logging.Level); err != nil {
		return err
	}
	if cfg.Language != "" {
		if _, err := language.Parse(cfg.Language); err != nil {
			return fmt.Errorf("config: language %q: %w", cfg.Language, err)
		}
	}
	return nil
}

// ParseLevel maps a level name to a slog level; empty means warn
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", s)
}

// Viewer builds the viewer the configuration describes
func Viewer(cfg Config) (*facsimile.Viewer, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	v := facsimile.New().
		PanelWidth(cfg.Panel.Width).
		FontSize(cfg.Panel.FontSize).
		ImageViewport(cfg.Viewport.ImageWidth, cfg.Viewport.ImageHeight).
		TextViewport(cfg.Viewport.TextWidth, cfg.Viewport.TextHeight).
		VerticalTolerance(cfg.ReadingOrder.VerticalTolerance)

	if cfg.ReadingOrder.Direction == "rtl" {
		v = v.RightToLeft()
	}
	if len(cfg.HiddenTypes) > 0 {
		v = v.HideAnnotationTypes(cfg.HiddenTypes...)
	}
	if cfg.Language != "" {
		v = v.Language(language.Make(cfg.Language))
	}

	if cfg.Panel.Font != "" {
		data, err := os.ReadFile(cfg.Panel.Font)
		if err != nil {
			return nil, fmt.Errorf("config: reading font: %w", err)
		}
		m, err := layout.NewShapingMeasurer(data, cfg.Panel.FontSize)
		if err != nil {
			return nil, fmt.Errorf("config: loading font: %w", err)
		}
		v = v.Measurer(m)
	}
	return v, nil
}
