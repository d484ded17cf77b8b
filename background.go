package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"flatmap/canvas"
	"flatmap/dom"
)

var (
	colorGrid        = color.RGBA{255, 255, 255, 14}
	colorOriginCross = color.RGBA{255, 100, 100, 150}
)

// drawBackgroundGrid fills the container margin and rules it with the
// graphic's coordinate grid, so panning and zooming stay visible around the
// map. Grid spacing follows the zoom level.
func (g *Game) drawBackgroundGrid(screen *ebiten.Image, window canvas.ViewWindow, graphic dom.Rect) {
	box := g.page.ContainerRect()
	if box.Empty() || graphic.Empty() {
		return
	}
	vector.DrawFilledRect(screen, float32(box.Left), float32(box.Top), float32(box.Width), float32(box.Height), ColorMargin, false)

	r := canvas.Rect{Left: graphic.Left, Top: graphic.Top, Width: graphic.Width, Height: graphic.Height}
	left, top, _ := canvas.DeviceToCanvas(window, r, box.Left, box.Top)
	right, bottom, _ := canvas.DeviceToCanvas(window, r, box.Left+box.Width, box.Top+box.Height)

	step := gridStep(window.Width / graphic.Width)
	for wx := math.Floor(left/step) * step; wx < right; wx += step {
		sx, _, _ := canvas.CanvasToDevice(window, r, wx, 0)
		vector.StrokeLine(screen, float32(sx), float32(box.Top), float32(sx), float32(box.Top+box.Height), 1, colorGrid, false)
	}
	for wy := math.Floor(top/step) * step; wy < bottom; wy += step {
		_, sy, _ := canvas.CanvasToDevice(window, r, 0, wy)
		vector.StrokeLine(screen, float32(box.Left), float32(sy), float32(box.Left+box.Width), float32(sy), 1, colorGrid, false)
	}

	ox, oy, _ := canvas.CanvasToDevice(window, r, 0, 0)
	if box.Contains(ox, oy) {
		vector.StrokeLine(screen, float32(ox-15), float32(oy), float32(ox+15), float32(oy), 2, colorOriginCross, false)
		vector.StrokeLine(screen, float32(ox), float32(oy-15), float32(ox), float32(oy+15), 2, colorOriginCross, false)
	}
}

// gridStep picks a power of ten in canvas units so lines land roughly 50
// to 500 pixels apart.
func gridStep(unitsPerPixel float64) float64 {
	if !(unitsPerPixel > 0) {
		return 100
	}
	return math.Pow(10, math.Ceil(math.Log10(unitsPerPixel*50)))
}
