package main

import "image/color"

const (
	// --- Page layout ---
	PanelHeight   = 64.0
	GraphicMargin = 24.0

	// --- Input ---
	WheelDeltaScale = 100.0 // device pixels per wheel notch, as browsers report
	HitTolerance    = 3.0   // px
	KeyZoomDelta    = 40.0

	// --- Status panel ---
	ChipHeight   = 20.0
	ChipPaddingX = 6.0
	ChipGap      = 6.0

	// --- View buttons ---
	ButtonWidth  = 30.0
	ButtonMargin = 10.0

	// --- Clear control ---
	ClearButtonWidth  = 130.0
	ClearButtonHeight = 24.0

	// --- Strokes ---
	MinStrokeWidth = 0.5
)

var (
	// --- Colors ---
	ColorBackground    = color.RGBA{30, 30, 35, 255}
	ColorPaper         = color.RGBA{245, 245, 240, 255}
	ColorMargin        = color.RGBA{40, 40, 46, 255}
	ColorPanel         = color.RGBA{22, 22, 26, 240}
	ColorPanelText     = color.RGBA{220, 220, 220, 255}
	ColorPanelDim      = color.RGBA{150, 150, 150, 200}
	ColorChipText      = color.RGBA{20, 20, 20, 255}
	ColorControl       = color.RGBA{60, 60, 70, 220}
	ColorControlBorder = color.RGBA{120, 120, 135, 255}
	ColorHover         = color.RGBA{255, 255, 255, 40}

	// GroupColors are the chip colours of the default grouping script's
	// groups. Other group names get a generated colour.
	GroupColors = map[string]string{
		"Cortical":        "#4ea8de",
		"Hypothalamus":    "#f4a261",
		"Amygdala":        "#e76f51",
		"Septal Striatum": "#8ac926",
		"Other":           "#b8b8b8",
	}
)
