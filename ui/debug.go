package ui

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// messageTTL is how long an info message stays up. Errors stay until
// cleared.
const messageTTL = 3 * time.Second

var (
	colorPanel = color.RGBA{40, 40, 40, 220}
	colorError = color.RGBA{255, 200, 50, 255}
	colorInfo  = color.RGBA{180, 220, 255, 255}
)

// DebugPanel shows the last host error, or a short-lived info message such
// as "exported selection.yaml".
type DebugPanel struct {
	Error string
	Info  string

	infoAt time.Time
	now    func() time.Time
}

func (d *DebugPanel) SetError(msg string) {
	d.Error = msg
}

// SetInfo shows msg for a few seconds.
func (d *DebugPanel) SetInfo(msg string) {
	d.Info = msg
	d.infoAt = d.clock()
}

func (d *DebugPanel) Clear() {
	d.Error = ""
	d.Info = ""
}

// Message returns what the panel currently shows and whether it is an error.
func (d *DebugPanel) Message() (string, bool) {
	if d == nil {
		return "", false
	}
	if d.Error != "" {
		return d.Error, true
	}
	if d.Info != "" && d.clock().Sub(d.infoAt) < messageTTL {
		return d.Info, false
	}
	return "", false
}

func (d *DebugPanel) clock() time.Time {
	if d.now != nil {
		return d.now()
	}
	return time.Now()
}

func (d *DebugPanel) Draw(screen *ebiten.Image, getScreenSize func() (int, int), getFace func() font.Face, drawText TextDrawer) {
	msg, isErr := d.Message()
	if msg == "" {
		return
	}
	w, h := getScreenSize()
	pw, ph := 360, 80
	x := w - pw - 10
	y := h - ph - 10
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(pw), float32(ph), colorPanel, false)
	if getFace == nil || drawText == nil {
		return
	}
	face := getFace()
	if face == nil {
		return
	}
	clr := colorInfo
	if isErr {
		clr = colorError
	}
	drawText(screen, face, msg, x+8, y+8, clr)
}
