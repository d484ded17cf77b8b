// Package config loads the overlay and host settings.
//
// A file only needs the fields it changes: everything else keeps the value
// from Default. The format is picked by extension, .yaml/.yml or .toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"flatmap/canvas"
	"flatmap/logx"
)

// ErrUnknownFormat is returned for a config file with an unsupported extension.
var ErrUnknownFormat = errors.New("config: unknown file format")

type Config struct {
	Page      Page      `yaml:"page" toml:"page"`
	Scope     Scope     `yaml:"scope" toml:"scope"`
	Highlight Highlight `yaml:"highlight" toml:"highlight"`
	Gesture   Gesture   `yaml:"gesture" toml:"gesture"`
	Host      Host      `yaml:"host" toml:"host"`
	Log       Log       `yaml:"log" toml:"log"`
}

// Page holds the well-known element ids of the hosting page.
type Page struct {
	ContainerID      string `yaml:"container_id" toml:"container_id"`
	ListenerID       string `yaml:"listener_id" toml:"listener_id"`
	ClearContainerID string `yaml:"clear_container_id" toml:"clear_container_id"`
	ClearLabel       string `yaml:"clear_label" toml:"clear_label"`
}

// Scope lists selectors tried in order inside the graphic; the first match
// limits hit-testing and highlighting. With no match the whole graphic is
// in scope.
type Scope struct {
	Selectors []string `yaml:"selectors" toml:"selectors"`
}

// Highlight is the style forced onto selected geometry.
type Highlight struct {
	Class       string  `yaml:"class" toml:"class"`
	Stroke      string  `yaml:"stroke" toml:"stroke"`
	StrokeWidth string  `yaml:"stroke_width" toml:"stroke_width"`
	Fill        string  `yaml:"fill" toml:"fill"`
	FillOpacity float64 `yaml:"fill_opacity" toml:"fill_opacity"`
}

type Gesture struct {
	// DragThreshold is in device pixels along either axis.
	DragThreshold float64 `yaml:"drag_threshold" toml:"drag_threshold"`
	ZoomBase      float64 `yaml:"zoom_base" toml:"zoom_base"`
	// ButtonZoomDelta is the wheel delta one press of a zoom button is worth.
	ButtonZoomDelta float64 `yaml:"button_zoom_delta" toml:"button_zoom_delta"`
}

// Host configures the reference desktop host.
type Host struct {
	SVG       string `yaml:"svg" toml:"svg"`
	Watch     bool   `yaml:"watch" toml:"watch"`
	Width     int    `yaml:"width" toml:"width"`
	Height    int    `yaml:"height" toml:"height"`
	Title     string `yaml:"title" toml:"title"`
	Script    string `yaml:"script" toml:"script"`
	WebSocket string `yaml:"websocket" toml:"websocket"`
	Export    string `yaml:"export" toml:"export"`
}

type Log struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the settings of the rat atlas page the overlay was built for.
func Default() Config {
	return Config{
		Page: Page{
			ContainerID:      "svg-root",
			ListenerID:       "listener",
			ClearContainerID: "clear-btn-container",
			ClearLabel:       "Clear Selection",
		},
		Scope: Scope{
			Selectors: []string{
				"g#CNS_Division_TILES_rat_ g#REGION_TILES_418_divisions_A-Z_",
				"#REGION_TILES_418_divisions_A-Z_",
			},
		},
		Highlight: Highlight{
			Class:       "selected-region",
			Stroke:      "#ff006e",
			StrokeWidth: "0.6px",
			Fill:        "#ff006e",
			FillOpacity: 0.18,
		},
		Gesture: Gesture{
			DragThreshold:   3,
			ZoomBase:        canvas.ZoomBase,
			ButtonZoomDelta: 120,
		},
		Host: Host{
			Watch:  true,
			Width:  1280,
			Height: 800,
			Title:  "flatmap",
			Export: "selection.yaml",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a config in the format named by ext (".yaml", ".yml" or
// ".toml") over Default and validates it.
func Decode(r io.Reader, ext string) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("read: %w", err)
	}
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("%w %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if c.Page.ContainerID == "" {
		errs = append(errs, errors.New("page.container_id is empty"))
	}
	for _, s := range c.Scope.Selectors {
		if _, err := cascadia.Compile(s); err != nil {
			errs = append(errs, fmt.Errorf("scope.selectors: %q: %w", s, err))
		}
	}
	if c.Highlight.Class == "" || strings.ContainsAny(c.Highlight.Class, " .#") {
		errs = append(errs, fmt.Errorf("highlight.class %q is not a class name", c.Highlight.Class))
	}
	if _, err := colorful.Hex(c.Highlight.Stroke); err != nil {
		errs = append(errs, fmt.Errorf("highlight.stroke: %q: %w", c.Highlight.Stroke, err))
	}
	if _, err := colorful.Hex(c.Highlight.Fill); err != nil {
		errs = append(errs, fmt.Errorf("highlight.fill: %q: %w", c.Highlight.Fill, err))
	}
	if w, ok := canvas.ParseLength(c.Highlight.StrokeWidth); !ok || w < 0 {
		errs = append(errs, fmt.Errorf("highlight.stroke_width %q is not a length", c.Highlight.StrokeWidth))
	}
	if c.Highlight.FillOpacity < 0 || c.Highlight.FillOpacity > 1 {
		errs = append(errs, fmt.Errorf("highlight.fill_opacity %v is outside [0, 1]", c.Highlight.FillOpacity))
	}
	if c.Gesture.DragThreshold < 0 {
		errs = append(errs, fmt.Errorf("gesture.drag_threshold %v is negative", c.Gesture.DragThreshold))
	}
	if c.Gesture.ZoomBase <= 1 {
		errs = append(errs, fmt.Errorf("gesture.zoom_base %v must be greater than 1", c.Gesture.ZoomBase))
	}
	if c.Host.Width <= 0 || c.Host.Height <= 0 {
		errs = append(errs, fmt.Errorf("host window %dx%d has no area", c.Host.Width, c.Host.Height))
	}
	if _, err := logx.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Save writes c as yaml or toml according to the extension of path.
func Save(c Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(c)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
