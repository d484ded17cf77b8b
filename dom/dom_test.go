package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<html><body>
<div id="listener"><div id="svg-root"></div></div>
<div id="elsewhere"></div>
</body></html>`

func newTestDoc(t *testing.T) *Document {
	t.Helper()
	d, err := ParseString(testPage)
	require.NoError(t, err)
	return d
}

func TestClassHelpers(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetElementByID("svg-root")
	require.NotNil(t, root)

	AddClass(root, "selected-region")
	AddClass(root, "selected-region")
	assert.True(t, HasClass(root, "selected-region"))
	assert.Equal(t, "selected-region", AttrOr(root, "class", ""))

	RemoveClass(root, "selected-region")
	assert.False(t, HasClass(root, "selected-region"))
}

func TestDispatchBubblesToWindow(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetElementByID("svg-root")
	listener := d.GetElementByID("listener")

	var order []string
	d.AddEventListener(root, Click, func(*Event) { order = append(order, "root") })
	d.AddEventListener(listener, Click, func(*Event) { order = append(order, "listener") })
	d.AddWindowListener(Click, func(*Event) { order = append(order, "window") })

	d.Dispatch(root, &Event{Type: Click, Bubbles: true})
	assert.Equal(t, []string{"root", "listener", "window"}, order)
}

func TestDispatchStopPropagation(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetElementByID("svg-root")
	listener := d.GetElementByID("listener")

	reached := false
	d.AddEventListener(root, Click, func(e *Event) { e.StopPropagation() })
	d.AddEventListener(listener, Click, func(*Event) { reached = true })

	d.Dispatch(root, &Event{Type: Click, Bubbles: true})
	assert.False(t, reached)
}

func TestPreventDefault(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetElementByID("svg-root")
	d.AddEventListener(root, Wheel, func(e *Event) { e.PreventDefault() })

	assert.False(t, d.Dispatch(root, &Event{Type: Wheel, Bubbles: true, Cancelable: true}))
	assert.True(t, d.Dispatch(root, &Event{Type: Wheel, Bubbles: true}))
}

func TestRemoveEventListener(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetElementByID("svg-root")
	id := d.AddEventListener(root, Click, func(*Event) {})
	require.Equal(t, 1, d.ListenerCount(root, Click))
	d.RemoveEventListener(id)
	assert.Equal(t, 0, d.ListenerCount(root, Click))
}

func TestObserveScopedToContainer(t *testing.T) {
	d := newTestDoc(t)
	var batches [][]MutationRecord
	d.Observe("svg-root", func(recs []MutationRecord) { batches = append(batches, recs) })

	d.AppendChild(d.GetElementByID("elsewhere"), CreateElement("p", ""))
	assert.Empty(t, batches)

	root := d.GetElementByID("svg-root")
	require.NoError(t, d.SetInnerHTML(root, `<svg><g id="a"><path d="M0 0L1 1Z"/></g></svg>`))
	require.Len(t, batches, 1)
	assert.Equal(t, root, batches[0][0].Target)

	svg := FirstByTag(root, "svg")
	require.NotNil(t, svg)
	assert.Equal(t, "a", AttrOr(FirstByTag(svg, "g"), "id", ""))
}

func TestObserverMutationsAreQueued(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetElementByID("svg-root")

	depth, maxDepth, calls := 0, 0, 0
	d.Observe("svg-root", func([]MutationRecord) {
		calls++
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		if calls == 1 {
			d.AppendChild(root, CreateElement("span", ""))
		}
		depth--
	})

	d.AppendChild(root, CreateElement("p", ""))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, maxDepth)
}

func TestReplaceChildrenForgetsDetachedListeners(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetElementByID("svg-root")
	require.NoError(t, d.SetInnerHTML(root, `<svg></svg>`))
	old := FirstByTag(root, "svg")
	d.AddEventListener(old, Click, func(*Event) {})
	d.SetClientRect(old, Rect{Width: 10, Height: 10})

	require.NoError(t, d.SetInnerHTML(root, `<svg></svg>`))
	assert.Equal(t, 0, d.ListenerCount(old, Click))
	assert.True(t, d.ClientRect(old).Empty())
	assert.NotSame(t, old, FirstByTag(root, "svg"))
}

func TestContainsAndClosest(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetElementByID("svg-root")
	require.NoError(t, d.SetInnerHTML(root, `<svg><g><circle r="1"></circle></g></svg>`))
	circle := FirstByTag(root, "circle")

	assert.True(t, Contains(root, circle))
	assert.True(t, Contains(circle, circle))
	assert.False(t, Contains(circle, root))
	assert.Equal(t, "g", Tag(Closest(circle, "g")))
	assert.Nil(t, Closest(circle, "polygon"))
}
