// Package overlay turns a static svg map inside a host-rendered page into a
// selectable, pannable and zoomable one.
//
// The host owns the page and may replace the graphic at any time. The
// Controller watches the configured container, wires every new graphic
// instance exactly once and re-applies the selection to it, so selection
// survives re-rendering while listeners never pile up.
package overlay

import (
	"log/slog"
	"math"

	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"flatmap/canvas"
	"flatmap/config"
	"flatmap/dom"
	"flatmap/input"
	"flatmap/logx"
	"flatmap/notify"
	"flatmap/region"
	"flatmap/selection"
)

const (
	// AttrInitialized marks a graphic instance that has been wired.
	AttrInitialized = "data-initialized"
	// AttrInstance carries a per-instance id, for logs and debugging.
	AttrInstance = "data-overlay-instance"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithNotifier adds notifiers called after the DOM event is dispatched.
func WithNotifier(n ...notify.Notifier) Option {
	return func(c *Controller) { c.extra = append(c.extra, n...) }
}

// WithBounds sets how content bounds are measured when a graphic declares
// no viewBox.
func WithBounds(f BoundsFunc) Option {
	return func(c *Controller) { c.bounds = f }
}

// Controller is the lifecycle watcher. It is not safe for concurrent use;
// the host calls it and dispatches events on one loop.
type Controller struct {
	doc    *dom.Document
	store  *selection.Store
	cfg    config.Config
	logger *slog.Logger

	notifier notify.Notifier
	extra    []notify.Notifier
	bounds   BoundsFunc
	scopes   []cascadia.Selector
	rule     string
	gesture  *input.Classifier
	observer *dom.Observer

	// current binding
	svg      *html.Node
	resolver region.Resolver
	window   canvas.ViewWindow
	home     canvas.ViewWindow
	instance string

	margins     map[*html.Node]bool
	windowWired bool
	scanning    bool
	rescan      bool
}

// New returns a controller over doc. store is owned by the caller and
// outlives every graphic instance.
func New(doc *dom.Document, store *selection.Store, cfg config.Config, opts ...Option) *Controller {
	c := &Controller{
		doc:     doc,
		store:   store,
		cfg:     cfg,
		gesture: input.NewClassifier(cfg.Gesture.DragThreshold),
		margins: make(map[*html.Node]bool),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = logx.Or(c.logger)
	if c.store == nil {
		c.store = selection.NewStore()
	}

	for _, s := range cfg.Scope.Selectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			c.logger.Warn("ignoring scope selector", "selector", s, "err", err)
			continue
		}
		c.scopes = append(c.scopes, sel)
	}

	c.rule = HighlightRule(cfg.Highlight)
	if err := checkRule(c.rule); err != nil {
		c.logger.Warn("highlight style disabled", "err", err)
		c.rule = ""
	}

	c.notifier = notify.Multi(append([]notify.Notifier{&notify.DOM{
		Doc:        doc,
		TargetID:   cfg.Page.ListenerID,
		FallbackID: cfg.Page.ContainerID,
		Logger:     c.logger,
	}}, c.extra...))
	return c
}

// Start subscribes to changes inside the container and scans once.
func (c *Controller) Start() {
	if c.observer != nil {
		return
	}
	c.observer = c.doc.Observe(c.cfg.Page.ContainerID, func([]dom.MutationRecord) { c.Scan() })
	c.Scan()
}

// Stop ends the subscription. Listeners already attached stay in place.
func (c *Controller) Stop() {
	if c.observer != nil {
		c.observer.Disconnect()
		c.observer = nil
	}
}

// Scan locates the container and its graphic, wiring an unseen instance and
// resyncing a known one. Calls made while a scan runs are folded into one
// more pass after it.
func (c *Controller) Scan() {
	if c.scanning {
		c.rescan = true
		return
	}
	c.scanning = true
	defer func() { c.scanning = false }()
	for {
		c.rescan = false
		c.scan()
		if !c.rescan {
			return
		}
	}
}

func (c *Controller) scan() {
	container := c.doc.GetElementByID(c.cfg.Page.ContainerID)
	if container == nil {
		c.logger.Debug("container not found", "id", c.cfg.Page.ContainerID)
		return
	}
	svg := dom.FirstByTag(container, "svg")
	if svg == nil {
		c.logger.Debug("no graphic in container", "id", c.cfg.Page.ContainerID)
		return
	}
	if dom.AttrOr(svg, AttrInitialized, "") == "" {
		c.wire(container, svg)
		return
	}
	if svg != c.svg {
		// marked by someone else's controller or carried over by the host
		c.bind(svg)
		c.window = c.currentWindow()
	}
	c.Resync()
}

func (c *Controller) wire(container, svg *html.Node) {
	c.bind(svg)
	c.instance = uuid.NewString()
	log := c.logger.With("instance", c.instance)

	c.injectStyle(svg, log)

	c.home = canvas.InitializeWindow(graphicSource{doc: c.doc, svg: svg, bounds: c.bounds})
	c.setWindow(c.home)

	c.doc.AddEventListener(svg, dom.Click, c.onClick)
	c.doc.AddEventListener(svg, dom.MouseDown, c.onMouseDown)
	c.doc.AddEventListener(svg, dom.Wheel, c.onWheel)

	if !c.margins[container] {
		c.margins[container] = true
		c.doc.AddEventListener(container, dom.MouseDown, c.onMarginMouseDown)
		c.doc.AddEventListener(container, dom.Wheel, c.onMarginWheel)
	}
	if !c.windowWired {
		c.windowWired = true
		c.doc.AddWindowListener(dom.KeyDown, c.onKeyDown)
		c.doc.AddWindowListener(dom.MouseMove, c.onMouseMove)
		c.doc.AddWindowListener(dom.MouseUp, c.onMouseUp)
	}

	c.addClearControl(log)

	dom.SetAttr(svg, AttrInitialized, "true")
	dom.SetAttr(svg, AttrInstance, c.instance)
	log.Info("graphic wired", "window", c.home.String(), "scoped", c.resolver.Scope != svg)

	c.Resync()
}

// bind makes svg the current graphic and resolves its scope.
func (c *Controller) bind(svg *html.Node) {
	c.svg = svg
	c.instance = dom.AttrOr(svg, AttrInstance, "")
	c.resolver = region.New(svg, c.findScope(svg))
}

func (c *Controller) findScope(svg *html.Node) *html.Node {
	for _, sel := range c.scopes {
		for _, n := range sel.MatchAll(svg) {
			if n != svg {
				return n
			}
		}
	}
	return svg
}

func (c *Controller) injectStyle(svg *html.Node, log *slog.Logger) {
	if c.rule == "" {
		return
	}
	style := dom.CreateElement("style", svg.Namespace)
	style.AppendChild(dom.CreateText(c.rule))
	c.doc.AppendChild(svg, style)
	log.Debug("highlight style injected", "class", c.cfg.Highlight.Class)
}

func (c *Controller) addClearControl(log *slog.Logger) {
	box := c.doc.GetElementByID(c.cfg.Page.ClearContainerID)
	if box == nil || dom.HasChildNodes(box) {
		return
	}
	btn := dom.CreateElement("button", "")
	dom.SetAttr(btn, "style", "font-size: 12px")
	btn.AppendChild(dom.CreateText(c.cfg.Page.ClearLabel))
	c.doc.AddEventListener(btn, dom.Click, func(*dom.Event) { c.Clear() })
	c.doc.AppendChild(box, btn)
	log.Debug("clear control added", "container", c.cfg.Page.ClearContainerID)
}

// Resync applies the highlight class to exactly the geometry whose label is
// selected.
func (c *Controller) Resync() {
	if c.svg == nil {
		return
	}
	class := c.cfg.Highlight.Class
	for _, n := range c.resolver.Geometry() {
		if lbl := c.resolver.Label(n); lbl != "" && c.store.Contains(lbl) {
			dom.AddClass(n, class)
		} else {
			dom.RemoveClass(n, class)
		}
	}
}

// Toggle flips lbl, resyncs and notifies. Empty labels are ignored.
func (c *Controller) Toggle(lbl string) {
	if lbl == "" {
		return
	}
	c.store.Toggle(lbl)
	c.Resync()
	c.notifier.Notify(notify.New(lbl, c.store.List()))
}

// Clear empties the selection, resyncs and always notifies.
func (c *Controller) Clear() {
	c.store.Clear()
	c.Resync()
	c.notifier.Notify(notify.New("", nil))
}

// Selected returns the selected labels.
func (c *Controller) Selected() []string { return c.store.List() }

// Graphic returns the currently bound graphic, or nil.
func (c *Controller) Graphic() *html.Node { return c.svg }

// Scope returns the scope root of the current graphic, or nil.
func (c *Controller) Scope() *html.Node { return c.resolver.Scope }

// Instance returns the id stamped on the current graphic.
func (c *Controller) Instance() string { return c.instance }

// Window returns the current view window.
func (c *Controller) Window() (canvas.ViewWindow, bool) {
	return c.window, c.svg != nil && c.window.Valid()
}

// LabelAt resolves a hit node the way a click would, without toggling.
func (c *Controller) LabelAt(hit *html.Node) string {
	if c.svg == nil {
		return ""
	}
	geom := dom.Closest(hit, region.GeometryTags...)
	if geom == nil || !dom.Contains(c.svg, geom) || !c.resolver.InScope(geom) {
		return ""
	}
	return c.resolver.Label(geom)
}

// ZoomBy zooms about the centre of the graphic.
func (c *Controller) ZoomBy(deltaY float64) {
	r := c.rect()
	c.zoomAt(r.Left+r.Width/2, r.Top+r.Height/2, deltaY)
}

// PanBy shifts the view by a device delta.
func (c *Controller) PanBy(dx, dy float64) {
	if c.svg == nil {
		return
	}
	if w, ok := canvas.PanBy(c.window, c.rect(), dx, dy); ok {
		c.setWindow(w)
	}
}

// ResetView restores the window computed when the graphic was wired.
func (c *Controller) ResetView() {
	if c.svg != nil && c.home.Valid() {
		c.setWindow(c.home)
	}
}

func (c *Controller) zoomAt(px, py, deltaY float64) {
	if c.svg == nil {
		return
	}
	factor := math.Pow(c.cfg.Gesture.ZoomBase, deltaY)
	if w, ok := canvas.ZoomAtFactor(c.window, c.rect(), px, py, factor); ok {
		c.setWindow(w)
	}
}

func (c *Controller) rect() canvas.Rect {
	return toCanvasRect(c.doc.ClientRect(c.svg))
}

func (c *Controller) currentWindow() canvas.ViewWindow {
	return canvas.InitializeWindow(graphicSource{doc: c.doc, svg: c.svg, bounds: c.bounds})
}

func (c *Controller) setWindow(w canvas.ViewWindow) {
	c.window = w
	key := "viewBox"
	if _, ok := dom.Attr(c.svg, "viewBox"); !ok {
		if _, lower := dom.Attr(c.svg, "viewbox"); lower {
			key = "viewbox"
		}
	}
	dom.SetAttr(c.svg, key, w.String())
}

func (c *Controller) onClick(ev *dom.Event) {
	if !c.gesture.TakeClick() {
		c.logger.Debug("click after drag suppressed")
		return
	}
	lbl := c.LabelAt(ev.Target)
	if lbl == "" {
		return
	}
	c.Toggle(lbl)
	c.logger.Debug("region toggled", "label", lbl, "selected", c.store.Contains(lbl))
	ev.StopPropagation()
}

func (c *Controller) onMouseDown(ev *dom.Event) {
	if c.gesture.Down(ev.ClientX, ev.ClientY, ev.Button) {
		ev.PreventDefault()
	}
}

func (c *Controller) onWheel(ev *dom.Event) {
	c.zoomAt(ev.ClientX, ev.ClientY, ev.DeltaY)
	ev.PreventDefault()
}

// Margin handlers only act on events that started outside the graphic; the
// graphic's own handlers already saw the rest.
func (c *Controller) onMarginMouseDown(ev *dom.Event) {
	if dom.Contains(c.svg, ev.Target) {
		return
	}
	c.onMouseDown(ev)
}

func (c *Controller) onMarginWheel(ev *dom.Event) {
	if dom.Contains(c.svg, ev.Target) {
		return
	}
	c.onWheel(ev)
}

func (c *Controller) onMouseMove(ev *dom.Event) {
	if dx, dy, pan := c.gesture.Move(ev.ClientX, ev.ClientY); pan {
		c.PanBy(dx, dy)
	}
}

func (c *Controller) onMouseUp(*dom.Event) {
	if c.gesture.Up() {
		c.logger.Debug("pan finished", "window", c.window.String())
	}
}

func (c *Controller) onKeyDown(ev *dom.Event) {
	if ev.Key == "Escape" {
		c.Clear()
	}
}
