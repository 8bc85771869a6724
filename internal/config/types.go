package config

// Config is the CLI configuration, read once at startup.
// JSON keys are snake_case; unknown keys fail the load.
type Config struct {
	// Inputs
	Page        string `json:"page"`        // PAGE XML file
	Image       string `json:"image"`       // path or URL; defaults to the page's imageFilename
	Annotations string `json:"annotations"` // annotation set JSON file, optional

	Output       Output       `json:"output"`
	Panel        Panel        `json:"panel"`
	Viewport     Viewport     `json:"viewport"`
	ReadingOrder ReadingOrder `json:"reading_order"`
	Logging      Logging      `json:"logging"`

	// HiddenTypes are annotation types switched off at start
	HiddenTypes []string `json:"hidden_types"`

	// Language is a BCP 47 tag used to case tooltip headers
	Language string `json:"language"`

	// Line, when set, is scrolled to and highlighted before output
	Line string `json:"line"`
}

// Output selects what the CLI writes
type Output struct {
	HTML string `json:"html"` // transcript HTML; "-" for stdout
	PNG  string `json:"png"`  // page snapshot with highlights
}

// Panel configures the transcription panel
type Panel struct {
	Width    float64 `json:"width"`
	FontSize float64 `json:"font_size"`
	// Font is a TrueType/OpenType file shaped with HarfBuzz; empty uses Go Regular
	Font string `json:"font"`
}

// Viewport sizes of the two views
type Viewport struct {
	ImageWidth  float64 `json:"image_width"`
	ImageHeight float64 `json:"image_height"`
	TextWidth   float64 `json:"text_width"`
	TextHeight  float64 `json:"text_height"`
}

// ReadingOrder configures the geometric fallback order
type ReadingOrder struct {
	Direction         string  `json:"direction"` // "ltr" or "rtl"
	VerticalTolerance float64 `json:"vertical_tolerance"`
}

// Logging only exposes the level
type Logging struct {
	Level string `json:"level"`
}
