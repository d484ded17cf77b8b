package overlay

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"flatmap/canvas"
	"flatmap/config"
	"flatmap/dom"
	"flatmap/notify"
	"flatmap/selection"
)

const mapSVG = `<svg id="map" viewBox="0 0 100 100" width="100" height="100">
  <rect width="100" height="100" fill="#fff"/>
  <g id="CNS_Division_TILES_rat_">
    <g id="REGION_TILES_418_divisions_A-Z_">
      <g id="B12"><path d="M0 0L10 0L10 10Z"/></g>
      <g data-name="C4"><polygon points="20,20 30,20 30,30"/></g>
      <g id="Border_Rect"><g id="Alpha"><path d="M40 40L50 40L50 50Z"/></g></g>
    </g>
  </g>
  <g id="Legend"><path d="M90 90L95 90L95 95Z"/></g>
</svg>`

const page = `<html><body>
<div id="listener"><div id="svg-root">` + mapSVG + `</div></div>
<div id="clear-btn-container"></div>
</body></html>`

type fixture struct {
	doc       *dom.Document
	ctl       *Controller
	store     *selection.Store
	events    []notify.Notification
	typed     []notify.Notification
	container *html.Node
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newFixture(t *testing.T, cfg config.Config, opts ...Option) *fixture {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)

	f := &fixture{doc: doc, store: selection.NewStore()}
	f.container = doc.GetElementByID("svg-root")
	doc.SetClientRect(f.container, dom.Rect{Left: 0, Top: 0, Width: 240, Height: 240})
	doc.SetClientRect(doc.GetElementByID("map"), dom.Rect{Left: 20, Top: 20, Width: 200, Height: 200})

	doc.AddEventListener(doc.GetElementByID("listener"), notify.EventType, func(ev *dom.Event) {
		n, ok := notify.FromEvent(ev)
		require.True(t, ok)
		f.events = append(f.events, n)
	})

	opts = append([]Option{
		WithLogger(quiet()),
		WithNotifier(notify.Func(func(n notify.Notification) { f.typed = append(f.typed, n) })),
	}, opts...)
	f.ctl = New(doc, f.store, cfg, opts...)
	f.ctl.Start()
	return f
}

func (f *fixture) svg() *html.Node { return dom.FirstByTag(f.container, "svg") }

// shape returns the first geometry element below the group with id.
func (f *fixture) shape(id string) *html.Node {
	g := dom.ByID(f.svg(), id)
	return dom.FindAll(g, "path", "polygon")[0]
}

func (f *fixture) byName(name string) *html.Node {
	for _, n := range dom.FindAll(f.svg(), "g") {
		if dom.Dataset(n, "name") == name {
			return dom.FirstByTag(n, "polygon")
		}
	}
	return nil
}

func (f *fixture) send(target *html.Node, typ string, x, y float64) bool {
	return f.doc.Dispatch(target, &dom.Event{Type: typ, ClientX: x, ClientY: y, Bubbles: true, Cancelable: true})
}

func (f *fixture) escape() {
	f.doc.Dispatch(f.doc.Body(), &dom.Event{Type: dom.KeyDown, Key: "Escape", Bubbles: true})
}

func TestEndToEndNotifications(t *testing.T) {
	f := newFixture(t, config.Default())
	b12 := f.shape("B12")

	f.send(b12, dom.Click, 25, 25)
	require.Len(t, f.events, 1)
	assert.Equal(t, notify.New("B12", []string{"B12"}), f.events[0])
	assert.True(t, dom.HasClass(b12, "selected-region"))

	f.send(b12, dom.Click, 25, 25)
	require.Len(t, f.events, 2)
	assert.Equal(t, notify.New("B12", []string{}), f.events[1])
	assert.False(t, dom.HasClass(b12, "selected-region"))

	f.send(b12, dom.Click, 25, 25)
	f.send(f.byName("C4"), dom.Click, 70, 70)
	assert.Equal(t, notify.New("C4", []string{"B12", "C4"}), f.events[3])

	f.escape()
	require.Len(t, f.events, 5)
	assert.Equal(t, notify.New("", []string{}), f.events[4])
	assert.Empty(t, f.store.List())
	assert.False(t, dom.HasClass(b12, "selected-region"))

	assert.Equal(t, f.events, f.typed, "typed notifiers see the same stream")
}

func TestEscapeAlwaysNotifies(t *testing.T) {
	f := newFixture(t, config.Default())
	f.escape()
	f.escape()
	assert.Equal(t, []notify.Notification{notify.New("", nil), notify.New("", nil)}, f.events)
}

func TestResolverPrecedenceThroughClick(t *testing.T) {
	f := newFixture(t, config.Default())
	f.send(f.shape("Alpha"), dom.Click, 0, 0)
	assert.Equal(t, []string{"Alpha"}, f.store.List())
}

func TestClickOutsideScopeIgnored(t *testing.T) {
	f := newFixture(t, config.Default())
	f.send(f.shape("Legend"), dom.Click, 0, 0)
	f.send(dom.FirstByTag(f.svg(), "rect"), dom.Click, 0, 0)
	assert.Empty(t, f.events)
	assert.Equal(t, dom.ByID(f.svg(), "REGION_TILES_418_divisions_A-Z_"), f.ctl.Scope())
}

func TestNestedScopeSelectorPreferred(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="listener"><div id="svg-root">
<svg id="map" viewBox="0 0 10 10">
  <g id="REGION_TILES_418_divisions_A-Z_"><path d="M0 0H1V1Z"/></g>
  <g id="CNS_Division_TILES_rat_">
    <g id="REGION_TILES_418_divisions_A-Z_"><path d="M2 2H3V3Z"/></g>
  </g>
</svg></div></div></body></html>`)
	require.NoError(t, err)

	ctl := New(doc, selection.NewStore(), config.Default(), WithLogger(quiet()))
	ctl.Start()

	scope := ctl.Scope()
	require.NotNil(t, scope)
	assert.Equal(t, "REGION_TILES_418_divisions_A-Z_", dom.AttrOr(scope, "id", ""))
	assert.Equal(t, "CNS_Division_TILES_rat_", dom.AttrOr(scope.Parent, "id", ""))
}

func TestUnmatchedScopeUsesWholeGraphic(t *testing.T) {
	cfg := config.Default()
	cfg.Scope.Selectors = []string{"g#does-not-exist"}
	f := newFixture(t, cfg)

	f.send(f.shape("Legend"), dom.Click, 0, 0)
	assert.Equal(t, []string{"Legend"}, f.store.List())
	assert.Equal(t, f.svg(), f.ctl.Scope())
}

func TestWiringIsIdempotent(t *testing.T) {
	f := newFixture(t, config.Default())
	svg := f.svg()
	instance := dom.AttrOr(svg, AttrInstance, "")

	assert.Equal(t, "true", dom.AttrOr(svg, AttrInitialized, ""))
	assert.NotEmpty(t, instance)

	check := func() {
		assert.Equal(t, 1, f.doc.ListenerCount(svg, dom.Click))
		assert.Equal(t, 1, f.doc.ListenerCount(svg, dom.MouseDown))
		assert.Equal(t, 1, f.doc.ListenerCount(svg, dom.Wheel))
		assert.Equal(t, 1, f.doc.ListenerCount(f.container, dom.MouseDown))
		assert.Equal(t, 1, f.doc.ListenerCount(f.container, dom.Wheel))
		assert.Equal(t, 1, f.doc.ListenerCount(nil, dom.KeyDown))
		assert.Equal(t, 1, f.doc.ListenerCount(nil, dom.MouseMove))
		assert.Equal(t, 1, f.doc.ListenerCount(nil, dom.MouseUp))
		assert.Len(t, dom.FindAll(svg, "style"), 1)
		assert.Len(t, dom.FindAll(f.doc.GetElementByID("clear-btn-container"), "button"), 1)
	}
	check()

	f.ctl.Scan()
	f.ctl.Scan()
	f.doc.AppendChild(f.container, dom.CreateElement("div", ""))
	check()
	assert.Equal(t, instance, dom.AttrOr(svg, AttrInstance, ""))
}

func TestStartTwiceDoesNotDoubleSubscribe(t *testing.T) {
	f := newFixture(t, config.Default())
	obs := f.ctl.observer
	f.ctl.Start()
	assert.Same(t, obs, f.ctl.observer)

	f.ctl.Stop()
	f.ctl.Stop()
	require.NoError(t, f.doc.SetInnerHTML(f.container, mapSVG))
	assert.Empty(t, dom.AttrOr(f.svg(), AttrInitialized, ""), "stopped controller ignores new graphics")
}

func TestReplacementKeepsSelection(t *testing.T) {
	f := newFixture(t, config.Default())
	old := f.svg()
	oldInstance := dom.AttrOr(old, AttrInstance, "")
	f.send(f.shape("B12"), dom.Click, 0, 0)
	f.ctl.PanBy(30, 0)

	require.NoError(t, f.doc.SetInnerHTML(f.container, mapSVG))

	svg := f.svg()
	require.NotSame(t, old, svg)
	assert.Equal(t, "true", dom.AttrOr(svg, AttrInitialized, ""))
	assert.NotEqual(t, oldInstance, dom.AttrOr(svg, AttrInstance, ""))
	assert.Same(t, svg, f.ctl.Graphic())

	assert.True(t, dom.HasClass(f.shape("B12"), "selected-region"), "selection survives replacement")
	assert.Equal(t, []string{"B12"}, f.ctl.Selected())

	w, ok := f.ctl.Window()
	require.True(t, ok)
	assert.Equal(t, canvas.ViewWindow{Width: 100, Height: 100}, w, "window is recomputed, not carried over")

	assert.Equal(t, 0, f.doc.ListenerCount(old, dom.Click))
	assert.Equal(t, 1, f.doc.ListenerCount(svg, dom.Click))
	assert.Equal(t, 1, f.doc.ListenerCount(f.container, dom.Wheel))
	assert.Equal(t, 1, f.doc.ListenerCount(nil, dom.KeyDown))
	assert.Len(t, dom.FindAll(f.doc.GetElementByID("clear-btn-container"), "button"), 1)

	// the new instance toggles through its own listener
	f.doc.SetClientRect(svg, dom.Rect{Left: 20, Top: 20, Width: 200, Height: 200})
	f.send(f.shape("B12"), dom.Click, 0, 0)
	assert.Empty(t, f.ctl.Selected())
	assert.Len(t, f.events, 2)
}

func TestDragDoesNotToggle(t *testing.T) {
	f := newFixture(t, config.Default())
	b12 := f.shape("B12")

	f.send(b12, dom.MouseDown, 50, 50)
	f.send(b12, dom.MouseMove, 60, 50)
	f.send(b12, dom.MouseUp, 60, 50)
	f.send(b12, dom.Click, 60, 50)

	assert.Empty(t, f.store.List())
	assert.Empty(t, f.events)
	w, _ := f.ctl.Window()
	assert.Equal(t, canvas.ViewWindow{X: -5, Y: 0, Width: 100, Height: 100}, w)
	assert.Equal(t, w.String(), dom.AttrOr(f.svg(), "viewBox", ""))
}

func TestSmallMoveStillToggles(t *testing.T) {
	f := newFixture(t, config.Default())
	b12 := f.shape("B12")

	f.send(b12, dom.MouseDown, 50, 50)
	f.send(b12, dom.MouseMove, 52, 47)
	f.send(b12, dom.MouseUp, 52, 47)
	f.send(b12, dom.Click, 52, 47)

	assert.Equal(t, []string{"B12"}, f.store.List())
	w, _ := f.ctl.Window()
	assert.Equal(t, canvas.ViewWindow{Width: 100, Height: 100}, w)
}

func TestPanFromContainerMargin(t *testing.T) {
	f := newFixture(t, config.Default())

	f.send(f.container, dom.MouseDown, 5, 5)
	f.send(f.container, dom.MouseMove, 5, 45)
	f.send(f.container, dom.MouseUp, 5, 45)

	w, _ := f.ctl.Window()
	assert.Equal(t, canvas.ViewWindow{X: 0, Y: -20, Width: 100, Height: 100}, w)
}

func TestWheelZoomsOnceOnGraphicAndMargin(t *testing.T) {
	f := newFixture(t, config.Default())
	rect := canvas.Rect{Left: 20, Top: 20, Width: 200, Height: 200}
	start, _ := f.ctl.Window()

	ev := &dom.Event{Type: dom.Wheel, ClientX: 70, ClientY: 120, DeltaY: -100, Bubbles: true, Cancelable: true}
	assert.False(t, f.doc.Dispatch(f.shape("B12"), ev), "wheel default is prevented")

	want, ok := canvas.ZoomAtFactor(start, rect, 70, 120, math.Pow(canvas.ZoomBase, -100))
	require.True(t, ok)
	got, _ := f.ctl.Window()
	assert.Equal(t, want, got)

	f.doc.Dispatch(f.container, &dom.Event{Type: dom.Wheel, ClientX: 5, ClientY: 5, DeltaY: 100, Bubbles: true, Cancelable: true})
	want, ok = canvas.ZoomAtFactor(want, rect, 5, 5, math.Pow(canvas.ZoomBase, 100))
	require.True(t, ok)
	got, _ = f.ctl.Window()
	assert.Equal(t, want, got)
}

func TestZeroRectSkipsTransforms(t *testing.T) {
	f := newFixture(t, config.Default())
	f.doc.SetClientRect(f.svg(), dom.Rect{})
	start, _ := f.ctl.Window()

	f.send(f.shape("B12"), dom.Wheel, 10, 10)
	f.ctl.ZoomBy(-50)
	f.ctl.PanBy(10, 10)

	got, _ := f.ctl.Window()
	assert.Equal(t, start, got)
}

func TestZoomByAndResetView(t *testing.T) {
	f := newFixture(t, config.Default())
	home, _ := f.ctl.Window()

	f.ctl.ZoomBy(-200)
	zoomed, _ := f.ctl.Window()
	assert.Less(t, zoomed.Width, home.Width)
	assert.InDelta(t, home.X+home.Width/2, zoomed.X+zoomed.Width/2, 1e-9, "centre stays put")

	f.ctl.ResetView()
	got, _ := f.ctl.Window()
	assert.Equal(t, home, got)
}

func TestClearButton(t *testing.T) {
	f := newFixture(t, config.Default())
	f.send(f.shape("B12"), dom.Click, 0, 0)

	btn := dom.FirstByTag(f.doc.GetElementByID("clear-btn-container"), "button")
	require.NotNil(t, btn)
	assert.Equal(t, "Clear Selection", dom.TextContent(btn))

	f.send(btn, dom.Click, 0, 0)
	assert.Empty(t, f.store.List())
	assert.Equal(t, notify.New("", nil), f.events[len(f.events)-1])
}

func TestClearContainerWithContentIsLeftAlone(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="svg-root">` + mapSVG +
		`</div><div id="clear-btn-container"><span>custom</span></div></body></html>`)
	require.NoError(t, err)

	New(doc, nil, config.Default(), WithLogger(quiet())).Start()
	assert.Empty(t, dom.FindAll(doc.GetElementByID("clear-btn-container"), "button"))
}

func TestLateGraphicIsWired(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="svg-root"></div></body></html>`)
	require.NoError(t, err)
	ctl := New(doc, nil, config.Default(), WithLogger(quiet()))
	ctl.Start()
	assert.Nil(t, ctl.Graphic())

	require.NoError(t, doc.SetInnerHTML(doc.GetElementByID("svg-root"), mapSVG))
	require.NotNil(t, ctl.Graphic())
	assert.Equal(t, "true", dom.AttrOr(ctl.Graphic(), AttrInitialized, ""))
}

func TestNotificationFallsBackToContainer(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="svg-root">` + mapSVG + `</div></body></html>`)
	require.NoError(t, err)

	var got []notify.Notification
	doc.AddEventListener(doc.GetElementByID("svg-root"), notify.EventType, func(ev *dom.Event) {
		n, _ := notify.FromEvent(ev)
		got = append(got, n)
	})
	ctl := New(doc, nil, config.Default(), WithLogger(quiet()))
	ctl.Start()
	ctl.Toggle("C4")
	assert.Equal(t, []notify.Notification{notify.New("C4", []string{"C4"})}, got)
}

func TestInitialWindowFromBounds(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="svg-root"><svg><g id="R1"><path d="M0 0Z"/></g></svg></div></body></html>`)
	require.NoError(t, err)

	bounds := canvas.ViewWindow{X: -10, Y: 5, Width: 40, Height: 20}
	ctl := New(doc, nil, config.Default(), WithLogger(quiet()),
		WithBounds(func(*html.Node) (canvas.ViewWindow, bool) { return bounds, true }))
	ctl.Start()

	w, ok := ctl.Window()
	require.True(t, ok)
	assert.Equal(t, bounds, w)
	assert.Equal(t, "-10 5 40 20", dom.AttrOr(ctl.Graphic(), "viewBox", ""))
}

func TestInitialWindowDefault(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="svg-root"><svg></svg></div></body></html>`)
	require.NoError(t, err)
	ctl := New(doc, nil, config.Default(), WithLogger(quiet()))
	ctl.Start()

	w, ok := ctl.Window()
	require.True(t, ok)
	assert.Equal(t, canvas.ViewWindow{Width: canvas.DefaultSize, Height: canvas.DefaultSize}, w)
}

func TestHighlightRule(t *testing.T) {
	rule := HighlightRule(config.Default().Highlight)
	assert.Contains(t, rule, ".selected-region {")
	assert.Contains(t, rule, "fill-opacity: 0.18 !important;")
	assert.NoError(t, checkRule(rule))

	assert.Error(t, checkRule(".x { fill: red; }"))
	assert.Error(t, checkRule(".x { fill: red !important; } .y { fill: blue !important; }"))
}
