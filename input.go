package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/net/html"

	"flatmap/dom"
)

// InputSystem turns ebiten input into page events, the way a browser would
// deliver them, and handles the host's own shortcuts.
type InputSystem struct {
	game *Game

	lastMouseX int
	lastMouseY int
	pressed    map[ebiten.MouseButton]*html.Node
	keys       []ebiten.Key
}

func NewInputSystem(g *Game) *InputSystem {
	return &InputSystem{
		game:    g,
		pressed: make(map[ebiten.MouseButton]*html.Node),
	}
}

var domButtons = map[ebiten.MouseButton]int{
	ebiten.MouseButtonLeft:   dom.ButtonPrimary,
	ebiten.MouseButtonMiddle: 1,
	ebiten.MouseButtonRight:  2,
}

func (is *InputSystem) Update() {
	g := is.game
	mx, my := ebiten.CursorPosition()
	overUI := g.ui.IsMouseOver(mx, my)

	is.handleControlKeys()
	is.handleKeys()
	is.handleButtons(mx, my, overUI)
	is.handleMove(mx, my)
	is.handleWheel(mx, my, overUI)
}

func (is *InputSystem) handleControlKeys() {
	g := is.game
	// --- Screenshot ---
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.screenshotRequested = true
	}

	// --- Export ---
	if ebiten.IsKeyPressed(ebiten.KeyControl) && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Export()
	}

	// --- Re-render, as a host framework would ---
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.Rerender()
	}

	// --- View ---
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit0) || inpututil.IsKeyJustPressed(ebiten.KeyNumpad0) {
		g.overlay.ResetView()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		g.overlay.ZoomBy(-KeyZoomDelta)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		g.overlay.ZoomBy(KeyZoomDelta)
	}
}

// handleKeys sends a keydown to the body for every key pressed this frame.
func (is *InputSystem) handleKeys() {
	g := is.game
	is.keys = inpututil.AppendJustPressedKeys(is.keys[:0])
	for _, k := range is.keys {
		g.Dispatch(g.page.Doc().Body(), &dom.Event{
			Type:       dom.KeyDown,
			Key:        k.String(),
			Shift:      ebiten.IsKeyPressed(ebiten.KeyShift),
			Ctrl:       ebiten.IsKeyPressed(ebiten.KeyControl),
			Meta:       ebiten.IsKeyPressed(ebiten.KeyMeta),
			Bubbles:    true,
			Cancelable: true,
		})
	}
}

// handleButtons sends mousedown and mouseup to the element under the
// pointer, and a click to the nearest element the press and release share.
func (is *InputSystem) handleButtons(mx, my int, overUI bool) {
	g := is.game
	for b, domButton := range domButtons {
		if inpututil.IsMouseButtonJustPressed(b) && !overUI {
			target := g.HitTarget(mx, my)
			is.pressed[b] = target
			g.Dispatch(target, is.pointerEvent(dom.MouseDown, mx, my, domButton))
		}
		if inpututil.IsMouseButtonJustReleased(b) {
			down, ok := is.pressed[b]
			if !ok {
				continue
			}
			delete(is.pressed, b)
			target := g.HitTarget(mx, my)
			g.Dispatch(target, is.pointerEvent(dom.MouseUp, mx, my, domButton))
			if domButton != dom.ButtonPrimary {
				continue
			}
			if common := commonAncestor(down, target); common != nil {
				g.Dispatch(common, is.pointerEvent(dom.Click, mx, my, domButton))
			}
		}
	}
}

func (is *InputSystem) handleMove(mx, my int) {
	if mx == is.lastMouseX && my == is.lastMouseY {
		return
	}
	is.lastMouseX, is.lastMouseY = mx, my
	g := is.game
	g.Dispatch(g.HitTarget(mx, my), is.pointerEvent(dom.MouseMove, mx, my, dom.ButtonPrimary))
}

func (is *InputSystem) handleWheel(mx, my int, overUI bool) {
	_, dy := ebiten.Wheel()
	if dy == 0 || overUI {
		return
	}
	g := is.game
	ev := is.pointerEvent(dom.Wheel, mx, my, dom.ButtonPrimary)
	// ebiten reports scrolling down as negative, browsers as positive
	ev.DeltaY = -dy * WheelDeltaScale
	g.Dispatch(g.HitTarget(mx, my), ev)
}

func (is *InputSystem) pointerEvent(typ string, mx, my, button int) *dom.Event {
	return &dom.Event{
		Type:       typ,
		ClientX:    float64(mx),
		ClientY:    float64(my),
		Button:     button,
		Shift:      ebiten.IsKeyPressed(ebiten.KeyShift),
		Ctrl:       ebiten.IsKeyPressed(ebiten.KeyControl),
		Bubbles:    true,
		Cancelable: true,
	}
}

// commonAncestor returns the deepest node containing both a and b.
func commonAncestor(a, b *html.Node) *html.Node {
	for n := a; n != nil; n = n.Parent {
		if dom.Contains(n, b) {
			return n
		}
	}
	return nil
}
