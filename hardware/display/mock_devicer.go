package display

import (
	"strings"
	"sync"
)

// MockDevicer emulates character LCD memory.
type MockDevicer struct {
	mu    sync.Mutex
	rows  [][]byte
	y, x  uint8
	clear int
}

func NewMockDevicer(rows, width int) *MockDevicer {
	self := &MockDevicer{rows: make([][]byte, rows)}
	for i := range self.rows {
		self.rows[i] = []byte(strings.Repeat(" ", width))
	}
	return self
}

func (self *MockDevicer) Clear() {
	self.mu.Lock()
	defer self.mu.Unlock()
	for _, r := range self.rows {
		for i := range r {
			r[i] = ' '
		}
	}
	self.y, self.x = 1, 1
	self.clear++
}

func (self *MockDevicer) CursorYX(y, x uint8) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	if y == 0 || int(y) > len(self.rows) || x == 0 || int(x) > len(self.rows[0]) {
		return false
	}
	self.y, self.x = y, x
	return true
}

func (self *MockDevicer) Write(b []byte) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.y == 0 {
		return
	}
	row := self.rows[self.y-1]
	n := copy(row[self.x-1:], b)
	self.x += uint8(n)
}

func (self *MockDevicer) Clears() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.clear
}

func (self *MockDevicer) String() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	ss := make([]string, len(self.rows))
	for i, r := range self.rows {
		ss[i] = string(r)
	}
	return strings.Join(ss, "\n")
}
