package display

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/linepanel/log2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// Framer is satisfied by framebuffer.Framebuffer.
type Framer interface {
	Size() image.Point
	Update(img *image.RGBA) error
	Flush() error
}

func FontFace(name string) (font.Face, error) {
	switch strings.ToLower(name) {
	case "", "8x16":
		return inconsolata.Regular8x16, nil
	case "8x16bold":
		return inconsolata.Bold8x16, nil
	case "7x13":
		return basicfont.Face7x13, nil
	}
	return nil, errors.NotValidf("font=%s", name)
}

// GraphicSurface renders text lines onto RGBA canvas and pushes it to Framer.
type GraphicSurface struct {
	log    *log2.Log
	mu     sync.Mutex
	fr     Framer
	face   font.Face
	canvas *image.RGBA
	style  Style
}

var _ Surface = &GraphicSurface{} // compile-time interface test

func NewGraphicSurface(fr Framer, face font.Face, log *log2.Log) *GraphicSurface {
	self := &GraphicSurface{
		log:    log,
		fr:     fr,
		face:   face,
		canvas: image.NewRGBA(image.Rectangle{Max: fr.Size()}),
		style: Style{
			Foreground: DarkBlue,
			Background: White,
			LineHeight: face.Metrics().Height.Ceil(),
		},
	}
	return self
}

func (self *GraphicSurface) SetStyle(s Style) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if s.LineHeight <= 0 {
		s.LineHeight = self.face.Metrics().Height.Ceil()
	}
	self.style = s
}

func (self *GraphicSurface) Clear(bg color.RGBA) {
	self.mu.Lock()
	defer self.mu.Unlock()
	draw.Draw(self.canvas, self.canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	self.style.Background = bg
	self.flush()
}

func (self *GraphicSurface) DrawTextAt(line int, text string, align Align) {
	self.mu.Lock()
	defer self.mu.Unlock()

	lh := self.style.LineHeight
	bounds := self.canvas.Bounds()
	top := line * lh
	if line < 0 || top+lh > bounds.Max.Y {
		self.log.Debugf("graphic display line=%d outside screen, dropped text=%q", line, text)
		return
	}
	strip := image.Rect(0, top, bounds.Max.X, top+lh)
	draw.Draw(self.canvas, strip, image.NewUniform(self.style.Background), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  self.canvas,
		Src:  image.NewUniform(self.style.Foreground),
		Face: self.face,
	}
	width := d.MeasureString(text).Ceil()
	x := 0
	switch align {
	case AlignCenter:
		x = (bounds.Max.X - width) / 2
	case AlignRight:
		x = bounds.Max.X - width
	}
	if x < 0 {
		x = 0
	}
	m := self.face.Metrics()
	baseline := top + (lh-m.Height.Ceil())/2 + m.Ascent.Ceil()
	d.Dot = fixed.P(x, baseline)
	d.DrawString(text)
	self.flush()
}

func (self *GraphicSurface) Canvas() *image.RGBA { return self.canvas }

func (self *GraphicSurface) flush() {
	if err := self.fr.Update(self.canvas); err != nil {
		self.log.Errorf("graphic display update err=%v", errors.ErrorStack(err))
		return
	}
	if err := self.fr.Flush(); err != nil {
		self.log.Errorf("graphic display flush err=%v", err)
	}
}
