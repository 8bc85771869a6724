// Command facsimile aligns a PAGE XML transcription with its page image,
// applies an annotation set and writes the transcription panel as HTML and,
// optionally, a snapshot of the page with its highlights.
//
// Usage:
//
//	facsimile [flags] page.xml [page-image] [annotations.json]
//
// Positional inputs may come in any order; each is recognized by its
// content, or by its extension when the content is inconclusive.
//
// Configuration is layered: defaults, then the JSON file given by -config,
// then FACSIMILE_* environment variables, then flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/tsawler/facsimile"
	"github.com/tsawler/facsimile/format"
	cfgpkg "github.com/tsawler/facsimile/internal/config"
	"github.com/tsawler/facsimile/model"
	"github.com/tsawler/facsimile/pagexml"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
	exitConfig = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Environ(), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args, environ []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("facsimile", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		flagConfig      string
		flagImage       string
		flagAnnotations string
		flagHTML        string
		flagPNG         string
		flagLine        string
		flagLogLevel    string
		flagHide        string
		flagFontSize    float64
	)
	fs.StringVar(&flagConfig, "config", "", "configuration file (JSON)")
	fs.StringVar(&flagImage, "image", "", "page image path or URL (default: the page's imageFilename)")
	fs.StringVar(&flagAnnotations, "annotations", "", "annotation set (JSON)")
	fs.StringVar(&flagHTML, "out-html", "", `write the transcript HTML here ("-" for stdout)`)
	fs.StringVar(&flagPNG, "out-png", "", "write a PNG snapshot of the page with highlights here")
	fs.StringVar(&flagLine, "line", "", "line id to scroll to and highlight")
	fs.StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&flagHide, "hide", "", "comma-separated annotation types to hide")
	fs.Float64Var(&flagFontSize, "font-size", 0, "transcription font size in pixels")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := cfgpkg.Defaults()
	if flagConfig != "" {
		base, err := cfgpkg.LoadJSON(flagConfig, nil)
		if err != nil {
			fmt.Fprintf(stderr, "reading configuration: %v\n", err)
			return exitConfig
		}
		cfg = cfgpkg.Merge(cfg, base)
	}
	cfg = cfgpkg.Merge(cfg, cfgpkg.EnvOverlay(environ))

	overCLI := cfgpkg.Config{
		Image:       flagImage,
		Annotations: flagAnnotations,
		Output:      cfgpkg.Output{HTML: flagHTML, PNG: flagPNG},
		Panel:       cfgpkg.Panel{FontSize: flagFontSize},
		Logging:     cfgpkg.Logging{Level: flagLogLevel},
		Line:        flagLine,
	}
	if err := classifyInputs(fs.Args(), &overCLI); err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitUsage
	}
	if flagHide != "" {
		for _, t := range strings.Split(flagHide, ",") {
			if t = strings.TrimSpace(t); t != "" {
				overCLI.HiddenTypes = append(overCLI.HiddenTypes, t)
			}
		}
	}
	cfg = cfgpkg.Merge(cfg, overCLI)
	if cfg.Output.HTML == "" && cfg.Output.PNG == "" {
		cfg.Output.HTML = "-"
	}

	if err := cfgpkg.Validate(cfg); err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitConfig
	}

	level, _ := cfgpkg.ParseLevel(cfg.Logging.Level)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	facsimile.SetLogger(logger)
	defer facsimile.SetLogger(nil)

	viewer, err := cfgpkg.Viewer(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	if err := render(ctx, viewer, cfg, stdout, stderr); err != nil {
		logger.Error("facsimile failed", "error", err)
		return exitFailed
	}
	return exitOK
}

func render(ctx context.Context, viewer *facsimile.Viewer, cfg cfgpkg.Config, stdout, stderr io.Writer) error {
	doc, err := pagexml.ParseFile(cfg.Page)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.Page, err)
	}

	var annotations []model.Annotation
	if cfg.Annotations != "" {
		f, err := os.Open(cfg.Annotations)
		if err != nil {
			return fmt.Errorf("opening annotations: %w", err)
		}
		annotations, err = model.ReadAnnotations(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	imageURL := resolveImage(cfg.Image, doc.Page.ImageFilename, cfg.Page)
	if imageURL == "" {
		return errors.New("no page image: set -image or imageFilename in the page")
	}

	session := viewer.NewSession()
	if err := session.LoadDocument(ctx, imageURL, doc, annotations); err != nil {
		return err
	}

	if cfg.Line != "" {
		if err := session.ScrollToLine(cfg.Line); err != nil {
			return err
		}
	}

	if warnings := session.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(stderr, facsimile.FormatWarnings(warnings))
	}

	if cfg.Output.HTML != "" {
		if err := writeOutput(cfg.Output.HTML, stdout, func(w io.Writer) error {
			_, err := io.WriteString(w, session.Transcript())
			return err
		}); err != nil {
			return fmt.Errorf("writing transcript: %w", err)
		}
	}

	if cfg.Output.PNG != "" {
		snap, err := session.Snapshot()
		if err != nil {
			return err
		}
		if err := writeOutput(cfg.Output.PNG, stdout, func(w io.Writer) error {
			return png.Encode(w, snap)
		}); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}
	return nil
}

// classifyInputs assigns positional arguments to the page, image and
// annotation inputs. Flags already set take precedence over arguments.
func classifyInputs(args []string, cfg *cfgpkg.Config) error {
	for _, arg := range args {
		var kind format.Format
		if u, err := url.Parse(arg); err == nil && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "data") {
			kind = format.Image
		} else if kind, err = format.DetectFile(arg); err != nil {
			// let the loader report missing files
			kind = format.Detect(arg)
		}

		var dst *string
		switch kind {
		case format.PageXML:
			dst = &cfg.Page
		case format.Image:
			dst = &cfg.Image
		case format.JSON:
			dst = &cfg.Annotations
		default:
			return fmt.Errorf("%s: not a PAGE XML file, page image or annotation set", arg)
		}
		if *dst == "" {
			*dst = arg
		} else if kind == format.PageXML {
			return fmt.Errorf("%s: only one page can be shown", arg)
		}
	}
	return nil
}

// resolveImage picks the image source: the explicit one, else the page's
// imageFilename, which is relative to the PAGE XML file unless absolute
// or a URL.
func resolveImage(explicit, fromPage, pagePath string) string {
	if explicit != "" {
		return explicit
	}
	if fromPage == "" {
		return ""
	}
	if u, err := url.Parse(fromPage); err == nil && len(u.Scheme) > 1 {
		return fromPage
	}
	if filepath.IsAbs(fromPage) {
		return fromPage
	}
	return filepath.Join(filepath.Dir(pagePath), fromPage)
}

func writeOutput(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
