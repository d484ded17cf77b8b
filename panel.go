package main

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"

	"flatmap/dom"
	"flatmap/engine"
	"flatmap/notify"
)

// StatusPanel shows the last clicked region and one chip per selected
// label. It learns about the selection only from the notification events
// reaching the listener element, like any other page script would.
type StatusPanel struct {
	grouper *engine.Grouper
	logger  *slog.Logger

	LastClicked string
	Labels      []string
	Events      int

	colors map[string]color.RGBA
}

// NewStatusPanel listens for notifications on the element with listenerID,
// or the whole window when there is no such element.
func NewStatusPanel(doc *dom.Document, listenerID string, grouper *engine.Grouper, logger *slog.Logger) *StatusPanel {
	p := &StatusPanel{grouper: grouper, logger: logger, colors: make(map[string]color.RGBA)}
	doc.AddEventListener(doc.GetElementByID(listenerID), notify.EventType, p.onNotification)
	return p
}

func (p *StatusPanel) onNotification(ev *dom.Event) {
	n, ok := notify.FromEvent(ev)
	if !ok {
		p.logger.Warn("notification without payload", "type", ev.Type)
		return
	}
	p.Events++
	if n.RegionStr != "" {
		p.LastClicked = n.RegionStr
	}
	p.Labels = append(p.Labels[:0], n.SelectedLabels...)
}

// GroupColor returns the chip colour of a group. Unknown groups get a
// stable colour derived from their name.
func (p *StatusPanel) GroupColor(group string) color.RGBA {
	if c, ok := p.colors[group]; ok {
		return c
	}
	var c colorful.Color
	if hex, ok := GroupColors[group]; ok {
		c, _ = colorful.Hex(hex)
	} else {
		h := fnv.New32a()
		h.Write([]byte(group))
		c = colorful.Hcl(float64(h.Sum32()%360), 0.45, 0.75).Clamped()
	}
	r, g, b := c.RGB255()
	out := color.RGBA{r, g, b, 255}
	p.colors[group] = out
	return out
}

func (p *StatusPanel) Draw(screen *ebiten.Image, face font.Face, width int) {
	vector.DrawFilledRect(screen, 0, 0, float32(width), PanelHeight, ColorPanel, false)

	last := p.LastClicked
	if last == "" {
		last = "None"
	}
	DrawTextLines(screen, face, fmt.Sprintf("Last clicked: %s    Selected: %d", last, len(p.Labels)), 10, 8, ColorPanelText)

	// leave room for the clear control and view buttons
	limit := float32(width) - 3*(ButtonWidth+ButtonMargin) - ClearButtonWidth - 2*ButtonMargin
	x, y := float32(10), float32(PanelHeight-ChipHeight-8)
	for i, lbl := range p.Labels {
		tw := float32(TextWidth(face, lbl))
		w := tw + 2*ChipPaddingX
		if x+w > limit {
			DrawTextLines(screen, face, fmt.Sprintf("+%d more", len(p.Labels)-i), int(x), int(y)+3, ColorPanelDim)
			break
		}
		clr := ColorPanelDim
		if p.grouper != nil {
			clr = p.GroupColor(p.grouper.Group(lbl))
		}
		vector.DrawFilledRect(screen, x, y, w, ChipHeight, clr, false)
		DrawTextLines(screen, face, lbl, int(x+ChipPaddingX), int(y)+3, ColorChipText)
		x += w + ChipGap
	}
}

// DrawControl paints a page button at its laid out rectangle.
func DrawControl(screen *ebiten.Image, face font.Face, btn dom.Rect, label string, hovered bool) {
	if btn.Empty() {
		return
	}
	x, y, w, h := float32(btn.Left), float32(btn.Top), float32(btn.Width), float32(btn.Height)
	vector.DrawFilledRect(screen, x, y, w, h, ColorControl, false)
	vector.StrokeRect(screen, x, y, w, h, 1, ColorControlBorder, false)
	if hovered {
		vector.DrawFilledRect(screen, x, y, w, h, ColorHover, false)
	}
	tw := TextWidth(face, label)
	DrawTextLines(screen, face, label, int(x+(w-float32(tw))/2), int(y)+5, ColorPanelText)
}
