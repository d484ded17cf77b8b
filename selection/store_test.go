package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleTwiceRestores(t *testing.T) {
	s := NewStore("A")
	before := s.List()

	assert.True(t, s.Toggle("B12"))
	assert.True(t, s.Contains("B12"))
	assert.False(t, s.Toggle("B12"))
	assert.False(t, s.Contains("B12"))
	assert.Equal(t, before, s.List())
}

func TestEmptyLabelIgnored(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Toggle(""))
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains(""))
}

func TestListKeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Toggle("C4")
	s.Toggle("B12")
	s.Toggle("A1")
	s.Toggle("B12")
	s.Toggle("B12")

	assert.Equal(t, []string{"C4", "A1", "B12"}, s.List())
}

func TestClear(t *testing.T) {
	s := NewStore("x", "y", "x", "")
	assert.Equal(t, []string{"x", "y"}, s.List())

	s.Clear()
	assert.Empty(t, s.List())
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestListIsACopy(t *testing.T) {
	s := NewStore("a")
	l := s.List()
	l[0] = "mutated"
	assert.True(t, s.Contains("a"))
}
