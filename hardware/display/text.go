package display

import (
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/paulrosania/go-charset/charset"
	_ "github.com/paulrosania/go-charset/data"
	"github.com/temoto/linepanel/internal/textwrap"
	"github.com/temoto/linepanel/log2"
)

const MaxWidth = 40

// Devicer is character LCD driver: HD44780 over GPIO or I2C backpack.
// Row and column are 1 based.
type Devicer interface {
	Clear()
	CursorYX(y, x uint8) bool
	Write(b []byte)
}

type TextSurfaceConfig struct {
	Codepage string
	Width    int
	Rows     int
	// First addressable line shown on device row 1.
	FirstLine int
}

// TextSurface maps presenter lines onto a small character LCD.
// Lines outside [FirstLine, FirstLine+Rows) are dropped.
type TextSurface struct {
	log   *log2.Log
	mu    sync.Mutex
	dev   Devicer
	tr    atomic.Value
	width int
	rows  [][]byte
	first int
}

var _ Surface = &TextSurface{} // compile-time interface test

func NewTextSurface(dev Devicer, opt TextSurfaceConfig, log *log2.Log) (*TextSurface, error) {
	if opt.Width <= 0 || opt.Width > MaxWidth {
		return nil, errors.NotValidf("text display width=%d (1..%d)", opt.Width, MaxWidth)
	}
	if opt.Rows <= 0 {
		return nil, errors.NotValidf("text display rows=%d", opt.Rows)
	}
	self := &TextSurface{
		log:   log,
		dev:   dev,
		width: opt.Width,
		rows:  make([][]byte, opt.Rows),
		first: opt.FirstLine,
	}
	if opt.Codepage != "" {
		if err := self.SetCodepage(opt.Codepage); err != nil {
			return nil, errors.Annotatef(err, "codepage=%s", opt.Codepage)
		}
	}
	return self, nil
}

func (self *TextSurface) SetCodepage(cp string) error {
	tr, err := charset.TranslatorTo(cp)
	if err != nil {
		return errors.Trace(err)
	}
	self.tr.Store(tr)
	return nil
}

func (self *TextSurface) Clear(color.RGBA) {
	self.mu.Lock()
	defer self.mu.Unlock()
	for i := range self.rows {
		self.rows[i] = nil
	}
	self.dev.Clear()
}

func (self *TextSurface) SetStyle(Style) {}

func (self *TextSurface) DrawTextAt(line int, text string, align Align) {
	row := line - self.first
	if row < 0 || row >= len(self.rows) {
		self.log.Debugf("text display line=%d outside rows, dropped text=%q", line, text)
		return
	}
	b := self.layout(self.Translate(text), align)

	self.mu.Lock()
	defer self.mu.Unlock()
	self.rows[row] = b
	if !self.dev.CursorYX(uint8(row+1), 1) {
		self.log.Errorf("text display cursor row=%d rejected", row+1)
		return
	}
	self.dev.Write(b)
}

// Rows returns current content, useful for tests and diagnostics.
func (self *TextSurface) Rows() []string {
	self.mu.Lock()
	defer self.mu.Unlock()
	ss := make([]string, len(self.rows))
	for i, r := range self.rows {
		ss[i] = string(r)
	}
	return ss
}

func (self *TextSurface) Translate(s string) []byte {
	result := []byte(s)
	tr, ok := self.tr.Load().(charset.Translator)
	if ok && tr != nil && len(result) != 0 {
		_, tb, err := tr.Translate(result, true)
		if err != nil {
			self.log.Errorf("text display translate err=%v", err)
			return result
		}
		// translator reuses single internal buffer, make a copy
		result = append([]byte(nil), tb...)
	}
	return result
}

func (self *TextSurface) layout(b []byte, align Align) []byte {
	if len(b) > self.width {
		b = b[:self.width]
	}
	switch align {
	case AlignCenter:
		b = textwrap.JustCenter(b, self.width)
	case AlignRight:
		b = textwrap.PadLeft(b, self.width)
	}
	return textwrap.PadRight(b, self.width)
}
