package app

import (
	"os"

	"plm-whiteboard/internal/logging"
	"plm-whiteboard/internal/render"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/internal/tool"
	"plm-whiteboard/pkg/colorutil"

	log "github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the configured log level.
const EnvLogLevel = "WHITEBOARD_LOG_LEVEL"

// Preference keys.
const (
	PrefGridEnabled    = "grid.enabled"
	PrefGridSize       = "grid.size"
	PrefGridStyle      = "grid.style"
	PrefSnapToGrid     = "snapToGrid"
	PrefShowGuides     = "showAlignmentGuides"
	PrefHandleSize     = "handleSize"
	PrefGuideThreshold = "guideThreshold"
	PrefStayInTool     = "stayInTool"
	PrefBackground     = "background"
	PrefLogLevel       = "logLevel"
	PrefLastDocument   = "lastDocument"
)

// Preferences is the key-value store settings are read from and written to.
// *prefs.Prefs satisfies it.
type Preferences interface {
	Float(key string, fallback float64) float64
	Bool(key string, fallback bool) bool
	String(key, fallback string) string
	SetFloat(key string, val float64)
	SetBool(key string, val bool)
	SetString(key string, val string)
}

// Settings are the user-tunable board options.
type Settings struct {
	Grid           scene.Grid
	SnapToGrid     bool
	ShowGuides     bool
	HandleSize     float64
	GuideThreshold float64
	StayInTool     bool
	Background     string
	LogLevel       log.Level
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	cfg := tool.DefaultConfig()
	return Settings{
		Grid:           scene.DefaultGrid(),
		ShowGuides:     true,
		HandleSize:     cfg.HandleSize,
		GuideThreshold: cfg.GuideThreshold,
		Background:     colorutil.Hex(colorutil.White),
		LogLevel:       logging.DefaultLevel,
	}
}

// LoadSettings reads settings from p, filling gaps with defaults, then
// applies the environment override. A nil p yields the defaults.
func LoadSettings(p Preferences) Settings {
	s := DefaultSettings()
	if p != nil {
		s.Grid.Enabled = p.Bool(PrefGridEnabled, s.Grid.Enabled)
		if size := p.Float(PrefGridSize, s.Grid.Size); size > 0 {
			s.Grid.Size = size
		}
		if p.String(PrefGridStyle, string(s.Grid.Style)) == string(scene.GridLines) {
			s.Grid.Style = scene.GridLines
		}
		s.SnapToGrid = p.Bool(PrefSnapToGrid, s.SnapToGrid)
		s.ShowGuides = p.Bool(PrefShowGuides, s.ShowGuides)
		if hs := p.Float(PrefHandleSize, s.HandleSize); hs > 0 {
			s.HandleSize = hs
		}
		if th := p.Float(PrefGuideThreshold, s.GuideThreshold); th >= 0 {
			s.GuideThreshold = th
		}
		s.StayInTool = p.Bool(PrefStayInTool, s.StayInTool)
		if _, err := colorutil.Parse(p.String(PrefBackground, s.Background)); err == nil {
			s.Background = p.String(PrefBackground, s.Background)
		}
		s.LogLevel = logging.ParseLevel(p.String(PrefLogLevel, s.LogLevel.String()))
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		s.LogLevel = logging.ParseLevel(env)
	}
	return s
}

// Save writes the settings to p. The environment override is not persisted
// unless it was also the configured level.
func (s Settings) Save(p Preferences) {
	p.SetBool(PrefGridEnabled, s.Grid.Enabled)
	p.SetFloat(PrefGridSize, s.Grid.Size)
	p.SetString(PrefGridStyle, string(s.Grid.Style))
	p.SetBool(PrefSnapToGrid, s.SnapToGrid)
	p.SetBool(PrefShowGuides, s.ShowGuides)
	p.SetFloat(PrefHandleSize, s.HandleSize)
	p.SetFloat(PrefGuideThreshold, s.GuideThreshold)
	p.SetBool(PrefStayInTool, s.StayInTool)
	p.SetString(PrefBackground, s.Background)
	if os.Getenv(EnvLogLevel) == "" {
		p.SetString(PrefLogLevel, s.LogLevel.String())
	}
}

// ToolConfig returns the tool machine configuration for these settings.
func (s Settings) ToolConfig() tool.Config {
	cfg := tool.DefaultConfig()
	cfg.HandleSize = s.HandleSize
	cfg.GuideThreshold = s.GuideThreshold
	cfg.StayInTool = s.StayInTool
	return cfg
}

// RenderOptions returns pipeline options for these settings, drawing
// symbols from catalog.
func (s Settings) RenderOptions(catalog render.SymbolLookup) render.Options {
	opts := render.DefaultOptions()
	opts.Background = colorutil.ParseOr(s.Background, colorutil.White)
	opts.Selection.HandleSize = s.HandleSize
	opts.Symbols = catalog
	return opts
}

// ApplyTo pushes the scene-level settings into st.
func (s Settings) ApplyTo(st *scene.Store) {
	st.SetGrid(s.Grid)
	st.SetSnapToGrid(s.SnapToGrid)
	st.SetShowAlignmentGuides(s.ShowGuides)
}
