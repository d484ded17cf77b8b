package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatmap/canvas"
	"flatmap/engine"
)

func TestBuildSelectionStateGroupsInScriptOrder(t *testing.T) {
	g, err := engine.LoadGrouper("", nil)
	require.NoError(t, err)

	labels := []string{"B12", "MOB", "LHAjvd", "CA1d", "ACB"}
	state := BuildSelectionState(labels, g, canvas.ViewWindow{X: 1, Y: 2, Width: 30, Height: 40}, true)

	assert.Equal(t, labels, state.SelectedLabels)
	assert.Equal(t, []GroupState{
		{Name: "Cortical", Labels: []string{"MOB"}},
		{Name: "Hypothalamus", Labels: []string{"LHAjvd"}},
		{Name: "Septal Striatum", Labels: []string{"ACB"}},
		{Name: "Other", Labels: []string{"B12", "CA1d"}},
	}, state.Groups)
	assert.Equal(t, engine.ScriptHash(engine.DefaultScript), state.ScriptHash)
	require.NotNil(t, state.ViewWindow)
	assert.Equal(t, ViewState{X: 1, Y: 2, Width: 30, Height: 40}, *state.ViewWindow)
}

func TestBuildSelectionStateUnlistedGroupsByName(t *testing.T) {
	g, err := engine.NewGrouper("first.star", `
def assign_group(label):
    return "G" + label[0]
`, nil)
	require.NoError(t, err)

	state := BuildSelectionState([]string{"Zeta", "Alpha", "Zed"}, g, canvas.ViewWindow{}, false)
	assert.Equal(t, []GroupState{
		{Name: "GA", Labels: []string{"Alpha"}},
		{Name: "GZ", Labels: []string{"Zeta", "Zed"}},
	}, state.Groups)
	assert.Nil(t, state.ViewWindow)
}

func TestBuildSelectionStateEmpty(t *testing.T) {
	state := BuildSelectionState(nil, nil, canvas.ViewWindow{}, false)
	assert.Equal(t, []string{}, state.SelectedLabels)
	assert.Empty(t, state.Groups)
	assert.Empty(t, state.ScriptHash)
}

func TestSaveLoadSelection(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "selection.yaml")

	g, err := engine.LoadGrouper("", nil)
	require.NoError(t, err)
	state := BuildSelectionState([]string{"MOB", "B12"}, g, canvas.ViewWindow{Width: 10, Height: 10}, true)
	state.Graphic = "map.svg"

	require.NoError(t, SaveSelection(state, filename))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "selected_labels:\n  - MOB\n  - B12\n")

	loaded, err := LoadSelection(filename)
	require.NoError(t, err)
	assert.True(t, state.ExportedAt.Equal(loaded.ExportedAt))
	loaded.ExportedAt = state.ExportedAt
	assert.Equal(t, state, loaded)
}

func TestLoadSelectionCleansLabels(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "selection.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("selected_labels: [B12, '', C4, B12]\n"), 0o644))

	state, err := LoadSelection(filename)
	require.NoError(t, err)
	assert.Equal(t, []string{"B12", "C4"}, state.SelectedLabels)

	_, err = LoadSelection(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
