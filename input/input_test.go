package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmallMoveStaysClick(t *testing.T) {
	c := NewClassifier(0)
	assert.True(t, c.Down(100, 100, ButtonPrimary))
	assert.Equal(t, Armed, c.State())

	_, _, pan := c.Move(102, 97)
	assert.False(t, pan)
	_, _, pan = c.Move(103, 103)
	assert.False(t, pan, "exactly the threshold is not a drag")

	assert.False(t, c.Up())
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.TakeClick())
}

func TestDragSuppressesOneClick(t *testing.T) {
	c := NewClassifier(3)
	c.Down(10, 10, ButtonPrimary)

	dx, dy, pan := c.Move(14, 10)
	assert.True(t, pan)
	assert.Equal(t, Dragging, c.State())
	assert.Equal(t, 4.0, dx, "crossing move pans from the origin")
	assert.Equal(t, 0.0, dy)

	dx, dy, pan = c.Move(15, 8)
	assert.True(t, pan)
	assert.Equal(t, 1.0, dx)
	assert.Equal(t, -2.0, dy)

	assert.True(t, c.Up())
	assert.False(t, c.TakeClick())
	assert.True(t, c.TakeClick(), "only the paired click is swallowed")
}

func TestVerticalDrag(t *testing.T) {
	c := NewClassifier(0)
	c.Down(0, 0, ButtonPrimary)
	_, dy, pan := c.Move(1, -5)
	assert.True(t, pan)
	assert.Equal(t, -5.0, dy)
}

func TestNonPrimaryButtonIgnored(t *testing.T) {
	c := NewClassifier(0)
	assert.False(t, c.Down(0, 0, 2))
	assert.Equal(t, Idle, c.State())

	_, _, pan := c.Move(50, 50)
	assert.False(t, pan)
}

func TestMoveWhileIdle(t *testing.T) {
	c := &Classifier{}
	_, _, pan := c.Move(10, 10)
	assert.False(t, pan)
	assert.False(t, c.Up())
	assert.True(t, c.TakeClick())
}

func TestNewPressClearsStaleSuppression(t *testing.T) {
	c := NewClassifier(0)
	c.Down(0, 0, ButtonPrimary)
	c.Move(20, 0)
	c.Up()

	// the click after the drag never arrived
	c.Down(5, 5, ButtonPrimary)
	c.Up()
	assert.True(t, c.TakeClick())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "armed", Armed.String())
	assert.Equal(t, "dragging", Dragging.String())
}
