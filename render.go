package main

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/net/html"

	"flatmap/canvas"
	"flatmap/dom"
	"flatmap/scene"
)

// Renderer draws the current graphic. Geometry is rebuilt only when the page
// holds a new svg instance; styles are refreshed when marked stale.
type Renderer struct {
	sc    *scene.Scene
	stale bool

	white *ebiten.Image

	vs []ebiten.Vertex
	is []uint16
}

// Scene returns the scene of svg, building it for a new instance.
func (r *Renderer) Scene(svg *html.Node) *scene.Scene {
	if svg == nil {
		r.sc = nil
		return nil
	}
	if r.sc == nil || r.sc.Root != svg {
		r.sc = scene.Build(svg)
		r.stale = false
	}
	if r.stale {
		r.sc.Restyle()
		r.stale = false
	}
	return r.sc
}

// Invalidate marks styles stale, e.g. after classes changed.
func (r *Renderer) Invalidate() { r.stale = true }

// Draw paints sc into the device rectangle rect showing window. hovered, if
// it is a shape of sc, gets a light wash.
func (r *Renderer) Draw(screen *ebiten.Image, sc *scene.Scene, window canvas.ViewWindow, rect dom.Rect, hovered *html.Node) {
	if sc == nil || rect.Empty() || !window.Valid() {
		return
	}
	vector.DrawFilledRect(screen, float32(rect.Left), float32(rect.Top), float32(rect.Width), float32(rect.Height), ColorPaper, false)

	cr := canvas.Rect{Left: rect.Left, Top: rect.Top, Width: rect.Width, Height: rect.Height}
	clip := screen.SubImage(image.Rect(
		int(math.Floor(rect.Left)), int(math.Floor(rect.Top)),
		int(math.Ceil(rect.Left+rect.Width)), int(math.Ceil(rect.Top+rect.Height)),
	)).(*ebiten.Image)
	pxPerUnit := rect.Width / window.Width

	for _, sh := range sc.Shapes {
		st := sh.Style
		if st.Hidden || len(sh.Subpaths) == 0 {
			continue
		}
		path := devicePath(sh, window, cr)
		if st.Fill.Set && sh.Tag != "line" && sh.Tag != "polyline" {
			r.fill(clip, path, st.Fill.RGBA(st.FillOpacity*st.Opacity))
		}
		if st.Stroke.Set && st.StrokeWidth > 0 {
			w := math.Max(st.StrokeWidth*sh.Scale*pxPerUnit, MinStrokeWidth)
			r.stroke(clip, path, float32(w), st.Stroke.RGBA(st.StrokeOpacity*st.Opacity))
		}
		if sh.Node == hovered {
			r.fill(clip, path, ColorHover)
		}
	}
}

func devicePath(sh *scene.Shape, window canvas.ViewWindow, rect canvas.Rect) *vector.Path {
	var path vector.Path
	for _, sp := range sh.Subpaths {
		for i, p := range sp.Points {
			x, y, _ := canvas.CanvasToDevice(window, rect, p.X, p.Y)
			if i == 0 {
				path.MoveTo(float32(x), float32(y))
			} else {
				path.LineTo(float32(x), float32(y))
			}
		}
		if sp.Closed {
			path.Close()
		}
	}
	return &path
}

func (r *Renderer) fill(dst *ebiten.Image, path *vector.Path, clr color.RGBA) {
	if clr.A == 0 {
		return
	}
	r.vs, r.is = path.AppendVerticesAndIndicesForFilling(r.vs[:0], r.is[:0])
	r.draw(dst, clr, ebiten.FillRuleEvenOdd)
}

func (r *Renderer) stroke(dst *ebiten.Image, path *vector.Path, width float32, clr color.RGBA) {
	if clr.A == 0 {
		return
	}
	op := &vector.StrokeOptions{Width: width, LineJoin: vector.LineJoinRound}
	r.vs, r.is = path.AppendVerticesAndIndicesForStroke(r.vs[:0], r.is[:0], op)
	r.draw(dst, clr, ebiten.FillRuleFillAll)
}

// draw colours the pending triangles. clr is premultiplied.
func (r *Renderer) draw(dst *ebiten.Image, clr color.RGBA, rule ebiten.FillRule) {
	for i := range r.vs {
		r.vs[i].SrcX = 1
		r.vs[i].SrcY = 1
		r.vs[i].ColorR = float32(clr.R) / 0xff
		r.vs[i].ColorG = float32(clr.G) / 0xff
		r.vs[i].ColorB = float32(clr.B) / 0xff
		r.vs[i].ColorA = float32(clr.A) / 0xff
	}
	if r.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		r.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	dst.DrawTriangles(r.vs, r.is, r.white, &ebiten.DrawTrianglesOptions{
		FillRule:  rule,
		AntiAlias: true,
	})
}
