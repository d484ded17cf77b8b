// Package ui draws the host's screen-space widgets: the view buttons in the
// top-right corner and the debug panel.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/font"
)

var colorHint = color.RGBA{200, 200, 200, 255}

const (
	buttonSize   = 30
	buttonMargin = 10
)

// Actions are the callbacks behind the view buttons. Nil actions get no
// button.
type Actions struct {
	ZoomIn  func()
	ZoomOut func()
	Reset   func()
}

type UISystem struct {
	buttons       []*Button
	getFontFace   func() font.Face
	getScreenSize func() (int, int)
	drawText      TextDrawer
	Debug         *DebugPanel
}

func NewUISystem(getFontFace func() font.Face, getScreenSize func() (int, int), actions Actions, drawText TextDrawer) *UISystem {
	ui := &UISystem{
		getFontFace:   getFontFace,
		getScreenSize: getScreenSize,
		drawText:      drawText,
		Debug:         &DebugPanel{},
	}
	ui.initButtons(actions)
	return ui
}

func (ui *UISystem) initButtons(a Actions) {
	// right to left
	for _, b := range []*Button{
		{Label: "+", Hint: "zoom in", OnClick: a.ZoomIn},
		{Label: "-", Hint: "zoom out", OnClick: a.ZoomOut},
		{Label: "0", Hint: "reset view", OnClick: a.Reset},
	} {
		if b.OnClick == nil {
			continue
		}
		b.W, b.H = buttonSize, buttonSize
		ui.buttons = append(ui.buttons, b)
	}
	ui.updateButtonPositions()
}

// Buttons returns the buttons, rightmost first.
func (ui *UISystem) Buttons() []*Button { return ui.buttons }

func (ui *UISystem) updateButtonPositions() {
	w, _ := ui.getScreenSize()
	for i, b := range ui.buttons {
		b.X = float32(w) - float32(i+1)*(b.W+buttonMargin)
		b.Y = buttonMargin
	}
}

// ButtonAt returns the button under (mx, my), if any.
func (ui *UISystem) ButtonAt(mx, my int) *Button {
	ui.updateButtonPositions()
	for _, b := range ui.buttons {
		if b.IsMouseOver(mx, my) {
			return b
		}
	}
	return nil
}

// IsMouseOver reports whether the pointer is over a widget, so the host can
// keep the event away from the page.
func (ui *UISystem) IsMouseOver(mx, my int) bool {
	return ui.ButtonAt(mx, my) != nil
}

func (ui *UISystem) Update() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	if b := ui.ButtonAt(ebiten.CursorPosition()); b != nil && b.OnClick != nil {
		b.OnClick()
	}
}

func (ui *UISystem) Draw(screen *ebiten.Image) {
	ui.updateButtonPositions()
	mx, my := ebiten.CursorPosition()
	for _, b := range ui.buttons {
		hovered := b.IsMouseOver(mx, my)
		b.Draw(screen, hovered, ui.getFontFace, ui.drawText)
		if hovered && b.Hint != "" && ui.drawText != nil && ui.getFontFace != nil {
			// right-aligned, roughly: keeps the rightmost hint on screen
			ui.drawText(screen, ui.getFontFace(), b.Hint, int(b.X+b.W)-8*len(b.Hint), int(b.Y+b.H)+6, colorHint)
		}
	}
	if ui.Debug != nil {
		ui.Debug.Draw(screen, ui.getScreenSize, ui.getFontFace, ui.drawText)
	}
}
