package main

import (
	"os"
	"slices"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"flatmap/canvas"
	"flatmap/engine"
)

type ViewState struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type GroupState struct {
	Name   string   `yaml:"name"`
	Labels []string `yaml:"labels"`
}

// SelectionState is what Ctrl+S writes: the selection, how the grouping
// script sorted it and where the user was looking.
type SelectionState struct {
	Graphic        string       `yaml:"graphic,omitempty"`
	ExportedAt     time.Time    `yaml:"exported_at"`
	SelectedLabels []string     `yaml:"selected_labels"`
	Groups         []GroupState `yaml:"groups"`
	ScriptHash     string       `yaml:"script_hash,omitempty"`
	ViewWindow     *ViewState   `yaml:"view_window,omitempty"`
}

// BuildSelectionState groups labels with g. Groups follow the script's
// order, then any others by name; labels keep their selection order.
func BuildSelectionState(labels []string, g *engine.Grouper, window canvas.ViewWindow, hasWindow bool) SelectionState {
	state := SelectionState{
		ExportedAt:     time.Now().UTC().Truncate(time.Second),
		SelectedLabels: append([]string{}, labels...),
		Groups:         []GroupState{},
	}
	if hasWindow {
		state.ViewWindow = &ViewState{X: window.X, Y: window.Y, Width: window.Width, Height: window.Height}
	}
	if g == nil {
		return state
	}
	state.ScriptHash = g.Hash()

	byGroup := lo.GroupBy(labels, g.Group)
	rest := lo.Without(lo.Keys(byGroup), g.Order()...)
	slices.Sort(rest)
	for _, name := range append(g.Order(), rest...) {
		if members, ok := byGroup[name]; ok {
			state.Groups = append(state.Groups, GroupState{Name: name, Labels: members})
		}
	}
	return state
}

func SaveSelection(state SelectionState, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&state); err != nil {
		return err
	}
	return enc.Close()
}

// LoadSelection reads an export back, e.g. to restore a selection at
// startup.
func LoadSelection(filename string) (SelectionState, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return SelectionState{}, err
	}
	var state SelectionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return SelectionState{}, err
	}
	state.SelectedLabels = lo.Uniq(lo.Compact(state.SelectedLabels))
	return state, nil
}
