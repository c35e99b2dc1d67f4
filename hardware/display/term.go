package display

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/internal/textwrap"
	"github.com/temoto/linepanel/log2"
)

// TermSurface prints whole screen to writer after every change.
// Used by simulator and headless runs.
type TermSurface struct {
	log   *log2.Log
	mu    sync.Mutex
	w     io.Writer
	ansi  bool
	width int
	lines map[int][]byte
}

var _ Surface = &TermSurface{} // compile-time interface test

func NewTermSurface(w io.Writer, width int, ansi bool, log *log2.Log) *TermSurface {
	return &TermSurface{
		log:   log,
		w:     w,
		ansi:  ansi,
		width: width,
		lines: make(map[int][]byte),
	}
}

func (self *TermSurface) Clear(color.RGBA) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.lines = make(map[int][]byte)
	self.render()
}

func (self *TermSurface) SetStyle(Style) {}

func (self *TermSurface) DrawTextAt(line int, text string, align Align) {
	b := []byte(text)
	switch align {
	case AlignCenter:
		b = textwrap.JustCenter(b, self.width)
	case AlignRight:
		b = textwrap.PadLeft(b, self.width)
	}

	self.mu.Lock()
	defer self.mu.Unlock()
	self.lines[line] = b
	self.render()
}

func (self *TermSurface) render() {
	max := -1
	for k := range self.lines {
		if k > max {
			max = k
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, (self.width+8)*(max+3)))
	if self.ansi {
		buf.WriteString("\x1b[H\x1b[2J")
	}
	border := append(append([]byte{'+'}, bytes.Repeat([]byte{'-'}, self.width)...), '+', '\n')
	buf.Write(border)
	for i := 0; i <= max; i++ {
		fmt.Fprintf(buf, "|%s|\n", textwrap.PadRight(self.lines[i], self.width))
	}
	buf.Write(border)
	if err := helpers.WriteAll(self.w, buf.Bytes()); err != nil {
		self.log.Errorf("term display write err=%v", err)
	}
}
