package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/net/html"

	"flatmap/config"
	"flatmap/dom"
	"flatmap/engine"
	"flatmap/notify"
	"flatmap/overlay"
	"flatmap/scene"
	"flatmap/selection"
	"flatmap/ui"
)

type Game struct {
	cfg    config.Config
	logger *slog.Logger

	page     *Page
	overlay  *overlay.Controller
	grouper  *engine.Grouper
	renderer Renderer
	panel    *StatusPanel
	bridge   *notify.Bridge
	server   *http.Server

	watcher *fsnotify.Watcher
	changed <-chan struct{}

	face         font.Face
	screenWidth  int
	screenHeight int

	// Sub-systems
	input *InputSystem
	ui    *ui.UISystem

	screenshotRequested bool
}

// NewGame builds the page, starts the overlay and renders the configured
// graphic. store may carry a restored selection.
func NewGame(cfg config.Config, store *selection.Store, logger *slog.Logger) (*Game, error) {
	g := &Game{
		cfg:          cfg,
		logger:       logger,
		screenWidth:  cfg.Host.Width,
		screenHeight: cfg.Host.Height,
	}

	var err error
	if g.grouper, err = engine.LoadGrouper(cfg.Host.Script, logger); err != nil {
		return nil, err
	}
	if g.page, err = NewPage(cfg, logger); err != nil {
		return nil, err
	}
	g.page.Resize(g.screenWidth, g.screenHeight)

	var extra []notify.Notifier
	if cfg.Host.WebSocket != "" {
		if err := g.serveBridge(cfg.Host.WebSocket); err != nil {
			return nil, err
		}
		extra = append(extra, g.bridge)
	}

	g.panel = NewStatusPanel(g.page.Doc(), cfg.Page.ListenerID, g.grouper, logger)
	g.overlay = overlay.New(g.page.Doc(), store, cfg,
		overlay.WithLogger(logger),
		overlay.WithBounds(scene.Bounds),
		overlay.WithNotifier(extra...),
	)
	g.overlay.Start()

	if err := g.page.Load(cfg.Host.SVG); err != nil {
		g.Close()
		return nil, err
	}
	g.page.layoutControls()

	if cfg.Host.Watch {
		if g.watcher, g.changed, err = Watch(cfg.Host.SVG, logger); err != nil {
			logger.Warn("not watching graphic", "path", cfg.Host.SVG, "err", err)
		}
	}

	g.face = LoadUIFont("", logger)
	g.input = NewInputSystem(g)
	g.ui = ui.NewUISystem(
		func() font.Face { return g.face },
		func() (int, int) { return g.screenWidth, g.screenHeight },
		ui.Actions{
			ZoomIn:  func() { g.overlay.ZoomBy(-cfg.Gesture.ButtonZoomDelta) },
			ZoomOut: func() { g.overlay.ZoomBy(cfg.Gesture.ButtonZoomDelta) },
			Reset:   g.overlay.ResetView,
		},
		DrawTextLines,
	)
	return g, nil
}

func (g *Game) serveBridge(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("websocket bridge: %w", err)
	}
	g.bridge = notify.NewBridge(g.logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", g.bridge)
	g.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("websocket bridge stopped", "err", err)
		}
	}()
	g.logger.Info("websocket bridge listening", "addr", ln.Addr().String(), "path", "/ws")
	return nil
}

// Close releases the watcher and the bridge.
func (g *Game) Close() {
	if g.overlay != nil {
		g.overlay.Stop()
	}
	if g.watcher != nil {
		g.watcher.Close()
	}
	if g.bridge != nil {
		g.bridge.Close()
	}
	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		g.server.Shutdown(ctx)
	}
}

// Dispatch delivers a page event. Anything may have restyled the graphic
// afterwards.
func (g *Game) Dispatch(target *html.Node, ev *dom.Event) {
	g.page.Doc().Dispatch(target, ev)
	g.renderer.Invalidate()
}

// HitTarget returns the element under a screen point.
func (g *Game) HitTarget(mx, my int) *html.Node {
	window, _ := g.overlay.Window()
	return g.page.HitTarget(float64(mx), float64(my), g.renderer.Scene(g.overlay.Graphic()), window)
}

// Rerender replaces the graphic with a fresh copy of the same markup.
func (g *Game) Rerender() {
	if err := g.page.Rerender(); err != nil {
		g.ui.Debug.SetError(err.Error())
		g.logger.Error("re-render failed", "err", err)
		return
	}
	g.ui.Debug.Clear()
	g.renderer.Invalidate()
}

func (g *Game) reload() {
	if err := g.page.Load(g.cfg.Host.SVG); err != nil {
		g.ui.Debug.SetError(err.Error())
		g.logger.Error("reload failed", "err", err)
		return
	}
	g.ui.Debug.SetInfo("reloaded " + g.cfg.Host.SVG)
	g.renderer.Invalidate()
}

// Export writes the selection file configured under host.export.
func (g *Game) Export() {
	window, ok := g.overlay.Window()
	state := BuildSelectionState(g.overlay.Selected(), g.grouper, window, ok)
	state.Graphic = g.cfg.Host.SVG
	if err := SaveSelection(state, g.cfg.Host.Export); err != nil {
		g.ui.Debug.SetError(err.Error())
		g.logger.Error("export failed", "path", g.cfg.Host.Export, "err", err)
		return
	}
	g.ui.Debug.SetInfo("exported " + g.cfg.Host.Export)
	g.logger.Info("selection exported", "path", g.cfg.Host.Export, "labels", len(state.SelectedLabels))
}

func (g *Game) Update() error {
	select {
	case <-g.changed:
		g.reload()
	default:
	}

	// Delegate to sub-systems
	g.input.Update()
	g.ui.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(ColorBackground)

	doc := g.page.Doc()
	mx, my := ebiten.CursorPosition()
	svg := g.overlay.Graphic()
	sc := g.renderer.Scene(svg)
	window, ok := g.overlay.Window()
	var hovered *html.Node
	if ok {
		g.drawBackgroundGrid(screen, window, doc.ClientRect(svg))
		if hit := g.HitTarget(mx, my); g.overlay.LabelAt(hit) != "" {
			hovered = hit
		}
		g.renderer.Draw(screen, sc, window, doc.ClientRect(svg), hovered)
	}

	g.panel.Draw(screen, g.face, g.screenWidth)
	if btn := g.page.ClearButton(); btn != nil {
		r := doc.ClientRect(btn)
		DrawControl(screen, g.face, r, dom.TextContent(btn), r.Contains(float64(mx), float64(my)))
	}
	if hovered != nil {
		label := g.overlay.LabelAt(hovered)
		DrawTextLines(screen, g.face, fmt.Sprintf("%s (%s)", label, g.grouper.Group(label)), mx+14, my+14, ColorPanelText)
	}

	g.ui.Draw(screen)

	// --- Save Screenshot ---
	if g.screenshotRequested {
		g.screenshotRequested = false
		g.saveScreenshot(screen)
	}
}

func (g *Game) saveScreenshot(screen *ebiten.Image) {
	name := fmt.Sprintf("screenshot-%s.png", time.Now().Format("20060102-150405"))
	f, err := os.Create(name)
	if err != nil {
		g.logger.Error("screenshot failed", "err", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, screen); err != nil {
		g.logger.Error("screenshot failed", "err", err)
		return
	}
	g.ui.Debug.SetInfo("saved " + name)
	g.logger.Info("screenshot saved", "path", name)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenWidth = outsideWidth
	g.screenHeight = outsideHeight
	g.page.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
