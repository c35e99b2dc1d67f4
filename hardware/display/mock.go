package display

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"sync"
)

type OpKind uint8

const (
	OpClear OpKind = iota + 1
	OpStyle
	OpDraw
)

type Op struct {
	Kind  OpKind
	Line  int
	Text  string
	Align Align
	Color color.RGBA
}

func (op Op) String() string {
	switch op.Kind {
	case OpClear:
		return "clear"
	case OpStyle:
		return "style"
	case OpDraw:
		return fmt.Sprintf("draw %d %s %q", op.Line, op.Align, op.Text)
	}
	return "op?"
}

// MockSurface records operations and current screen content.
type MockSurface struct {
	mu    sync.Mutex
	ops   []Op
	lines map[int]string
	style Style
	bg    color.RGBA
}

var _ Surface = &MockSurface{} // compile-time interface test

func NewMockSurface() *MockSurface {
	return &MockSurface{lines: make(map[int]string)}
}

func (self *MockSurface) Clear(bg color.RGBA) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.ops = append(self.ops, Op{Kind: OpClear, Color: bg})
	self.lines = make(map[int]string)
	self.bg = bg
}

func (self *MockSurface) SetStyle(s Style) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.ops = append(self.ops, Op{Kind: OpStyle, Color: s.Foreground})
	self.style = s
}

func (self *MockSurface) DrawTextAt(line int, text string, align Align) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.ops = append(self.ops, Op{Kind: OpDraw, Line: line, Text: text, Align: align})
	self.lines[line] = text
}

func (self *MockSurface) Ops() []Op {
	self.mu.Lock()
	defer self.mu.Unlock()
	return append([]Op(nil), self.ops...)
}

func (self *MockSurface) ResetOps() {
	self.mu.Lock()
	self.ops = self.ops[:0]
	self.mu.Unlock()
}

func (self *MockSurface) Line(n int) (string, bool) {
	self.mu.Lock()
	defer self.mu.Unlock()
	s, ok := self.lines[n]
	return s, ok
}

func (self *MockSurface) Style() Style {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.style
}

// String renders drawn lines in order, "NN|text" per line.
func (self *MockSurface) String() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	keys := make([]int, 0, len(self.lines))
	for k := range self.lines {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	b := strings.Builder{}
	for _, k := range keys {
		fmt.Fprintf(&b, "%02d|%s\n", k, self.lines[k])
	}
	return b.String()
}
