package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// TextDrawer draws s with its top-left corner at (x, y).
type TextDrawer func(screen *ebiten.Image, face font.Face, s string, x, y int, clr color.Color)

var (
	colorButton      = color.RGBA{60, 60, 70, 200}
	colorButtonHover = color.RGBA{90, 90, 105, 220}
)

type Button struct {
	Label   string
	Hint    string
	X, Y    float32
	W, H    float32
	OnClick func()
}

func (b *Button) IsMouseOver(mx, my int) bool {
	return float32(mx) >= b.X && float32(mx) <= b.X+b.W &&
		float32(my) >= b.Y && float32(my) <= b.Y+b.H
}

// Draw renders the button, lighter while hovered.
func (b *Button) Draw(screen *ebiten.Image, hovered bool, getFace func() font.Face, drawText TextDrawer) {
	clr := colorButton
	if hovered {
		clr = colorButtonHover
	}
	vector.DrawFilledRect(screen, b.X, b.Y, b.W, b.H, clr, false)
	if getFace == nil || drawText == nil {
		return
	}
	face := getFace()
	if face == nil {
		return
	}
	drawText(screen, face, b.Label, int(b.X)+10, int(b.Y)+8, color.White)
}
