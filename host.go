package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/net/html"

	"flatmap/canvas"
	"flatmap/config"
	"flatmap/dom"
	"flatmap/scene"
)

// ErrNoGraphic is returned when rendered markup holds no svg element.
var ErrNoGraphic = errors.New("no svg element in markup")

// pageTemplate mirrors the page the overlay was written for: the graphic
// container nested in the notification target, and an empty slot for the
// clear control.
const pageTemplate = `<!DOCTYPE html>
<html><head><title>%s</title></head>
<body>
<div id="%s"><div id="%s"></div></div>
<div id="%s"></div>
</body></html>`

// Page plays the part of the external renderer: it owns the document and
// replaces the container's content wholesale whenever the graphic is
// (re)rendered.
type Page struct {
	doc    *dom.Document
	cfg    config.Config
	logger *slog.Logger

	path    string
	markup  []byte
	width   float64
	height  float64
	renders int
}

// NewPage builds the hosting page. Nothing is rendered yet.
func NewPage(cfg config.Config, logger *slog.Logger) (*Page, error) {
	p := cfg.Page
	doc, err := dom.ParseString(fmt.Sprintf(pageTemplate,
		html.EscapeString(cfg.Host.Title),
		html.EscapeString(p.ListenerID),
		html.EscapeString(p.ContainerID),
		html.EscapeString(p.ClearContainerID)))
	if err != nil {
		return nil, err
	}
	return &Page{doc: doc, cfg: cfg, logger: logger}, nil
}

func (p *Page) Doc() *dom.Document { return p.doc }

func (p *Page) Container() *html.Node { return p.doc.GetElementByID(p.cfg.Page.ContainerID) }

// Graphic returns the svg currently in the container.
func (p *Page) Graphic() *html.Node { return dom.FirstByTag(p.Container(), "svg") }

// ClearButton returns the clear control once something has added it.
func (p *Page) ClearButton() *html.Node {
	return dom.FirstByTag(p.doc.GetElementByID(p.cfg.Page.ClearContainerID), "button")
}

// Renders counts how many times the container content was replaced.
func (p *Page) Renders() int { return p.renders }

// Load reads an svg file and renders it.
func (p *Page) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := p.Render(data); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	p.path = path
	return nil
}

// Rerender renders the last markup again as a brand new element.
func (p *Page) Rerender() error {
	if p.markup == nil {
		return ErrNoGraphic
	}
	return p.Render(p.markup)
}

// Render replaces the container content with markup. The new nodes are laid
// out before they are inserted, the way a browser has layout ready by the
// time observers run. On error the current graphic stays.
func (p *Page) Render(markup []byte) error {
	container := p.Container()
	if container == nil {
		return fmt.Errorf("container #%s missing", p.cfg.Page.ContainerID)
	}
	nodes, err := dom.ParseFragment(container, string(markup))
	if err != nil {
		return err
	}
	var svg *html.Node
	for _, n := range nodes {
		if dom.Tag(n) == "svg" {
			svg = n
		} else {
			svg = dom.FirstByTag(n, "svg")
		}
		if svg != nil {
			break
		}
	}
	if svg == nil {
		return ErrNoGraphic
	}
	p.layoutGraphic(svg)
	p.doc.ReplaceChildren(container, nodes...)
	p.markup = markup
	p.renders++
	p.logger.Info("graphic rendered", "path", p.path, "render", p.renders)
	return nil
}

// Resize lays the page out for a new screen size. Layout changes are not
// mutations.
func (p *Page) Resize(w, h int) {
	if float64(w) == p.width && float64(h) == p.height {
		return
	}
	p.width, p.height = float64(w), float64(h)
	if svg := p.Graphic(); svg != nil {
		p.layoutGraphic(svg)
	}
	p.layoutControls()
}

// ContainerRect is the area under the status panel.
func (p *Page) ContainerRect() dom.Rect {
	return dom.Rect{Top: PanelHeight, Width: p.width, Height: math.Max(0, p.height-PanelHeight)}
}

// layoutGraphic centres the graphic in the container, keeping the aspect
// ratio of its initial window so the map is never stretched.
func (p *Page) layoutGraphic(svg *html.Node) {
	box := p.ContainerRect()
	p.doc.SetClientRect(p.Container(), box)

	avail := dom.Rect{
		Left:   box.Left + GraphicMargin,
		Top:    box.Top + GraphicMargin,
		Width:  box.Width - 2*GraphicMargin,
		Height: box.Height - 2*GraphicMargin,
	}
	if avail.Empty() {
		p.doc.SetClientRect(svg, dom.Rect{})
		return
	}
	aspect := 1.0
	if w, ok := declaredWindow(svg); ok {
		aspect = w.Width / w.Height
	}
	r := avail
	if avail.Width/avail.Height > aspect {
		r.Width = avail.Height * aspect
		r.Left += (avail.Width - r.Width) / 2
	} else {
		r.Height = avail.Width / aspect
		r.Top += (avail.Height - r.Height) / 2
	}
	p.doc.SetClientRect(svg, r)
}

// layoutControls puts the clear control at the right end of the status
// panel, left of the view buttons.
func (p *Page) layoutControls() {
	btn := p.ClearButton()
	if btn == nil {
		return
	}
	x := p.width - 3*(ButtonWidth+ButtonMargin) - ClearButtonWidth - ButtonMargin
	p.doc.SetClientRect(btn, dom.Rect{
		Left:   x,
		Top:    (PanelHeight - ClearButtonHeight) / 2,
		Width:  ClearButtonWidth,
		Height: ClearButtonHeight,
	})
}

// declaredWindow is the viewBox, or the content bounds for a graphic
// without one.
func declaredWindow(svg *html.Node) (canvas.ViewWindow, bool) {
	for _, key := range []string{"viewBox", "viewbox"} {
		if v, ok := dom.Attr(svg, key); ok {
			if w, ok := canvas.ParseViewBox(v); ok {
				return w, true
			}
		}
	}
	return scene.Bounds(svg)
}

// HitTarget returns the element under the device point: a page control, the
// topmost painted element of the graphic, the graphic itself, the container
// margin, or the body.
func (p *Page) HitTarget(x, y float64, sc *scene.Scene, window canvas.ViewWindow) *html.Node {
	if btn := p.ClearButton(); btn != nil && p.doc.ClientRect(btn).Contains(x, y) {
		return btn
	}
	if svg := p.Graphic(); svg != nil {
		r := p.doc.ClientRect(svg)
		if r.Contains(x, y) {
			cr := canvas.Rect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
			if cx, cy, ok := canvas.DeviceToCanvas(window, cr, x, y); ok && sc != nil {
				tol := HitTolerance * window.Width / r.Width
				if n := sc.HitTest(scene.Point{X: cx, Y: cy}, tol); n != nil {
					return n
				}
			}
			return svg
		}
	}
	if c := p.Container(); c != nil && p.doc.ClientRect(c).Contains(x, y) {
		return c
	}
	return p.doc.Body()
}

// Watch reports changes to path on the returned channel until the watcher
// is closed. The directory is watched so editors that replace the file are
// picked up too.
func Watch(path string, logger *slog.Logger) (*fsnotify.Watcher, <-chan struct{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, nil, err
	}
	changed := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "path", abs, "err", err)
			}
		}
	}()
	return w, changed, nil
}
