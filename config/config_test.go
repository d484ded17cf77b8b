package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateAcceptsSVGTagSelectors(t *testing.T) {
	c := Default()
	c.Scope.Selectors = []string{"g", "svg > g#layer path", "g#a, rect.tile", "polygon[id^=REGION]"}
	assert.NoError(t, c.Validate())
}

func TestDecodeYAMLOverridesOnlyGivenFields(t *testing.T) {
	src := `
page:
  container_id: map-host
scope:
  selectors: ["g#regions"]
highlight:
  fill_opacity: 0.5
`
	cfg, err := Decode(strings.NewReader(src), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, "map-host", cfg.Page.ContainerID)
	assert.Equal(t, "listener", cfg.Page.ListenerID)
	assert.Equal(t, []string{"g#regions"}, cfg.Scope.Selectors)
	assert.Equal(t, 0.5, cfg.Highlight.FillOpacity)
	assert.Equal(t, "#ff006e", cfg.Highlight.Stroke)
	assert.Equal(t, 3.0, cfg.Gesture.DragThreshold)
}

func TestDecodeTOML(t *testing.T) {
	src := `
[gesture]
drag_threshold = 5.0

[log]
level = "debug"
`
	cfg, err := Decode(strings.NewReader(src), ".TOML")
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Gesture.DragThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "svg-root", cfg.Page.ContainerID)
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := Decode(strings.NewReader("{}"), ".json")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestValidateJoinsProblems(t *testing.T) {
	c := Default()
	c.Page.ContainerID = ""
	c.Scope.Selectors = []string{"g#ok", "g[["}
	c.Highlight.Stroke = "pink"
	c.Highlight.FillOpacity = 2
	c.Gesture.ZoomBase = 1
	c.Log.Level = "loud"

	err := c.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"container_id", "g[[", "highlight.stroke", "fill_opacity", "zoom_base", "log.level"} {
		assert.Contains(t, msg, want)
	}
	assert.NotContains(t, msg, "g#ok")
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"flatmap.yaml", "flatmap.toml"} {
		path := filepath.Join(dir, name)
		want := Default()
		want.Host.SVG = "atlas.svg"
		want.Highlight.Fill = "#00ff00"

		require.NoError(t, Save(want, path), name)
		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("page: [unterminated"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	assert.ErrorIs(t, Save(Default(), filepath.Join(dir, "x.ini")), ErrUnknownFormat)
}
