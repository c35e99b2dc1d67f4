// Package assembler accumulates serial bytes into bounded line messages.
//
// A message completes on '\n', '\r' or when the buffer holds capacity-1 bytes.
// Bytes past capacity-1 are dropped silently. Assembler never resets itself,
// owner calls Reset after consuming a completed message.
package assembler

import (
	"github.com/juju/errors"
)

const DefaultCapacity = 64

type Assembler struct {
	buf    []byte
	cursor int
}

func New(capacity int) (*Assembler, error) {
	if capacity < 2 {
		return nil, errors.NotValidf("assembler capacity=%d (min 2)", capacity)
	}
	return &Assembler{buf: make([]byte, capacity)}, nil
}

func MustNew(capacity int) *Assembler {
	a, err := New(capacity)
	if err != nil {
		panic("code error " + err.Error())
	}
	return a
}

func IsTerminator(b byte) bool { return b == '\n' || b == '\r' }

// Feed returns complete=true when b finished a message.
// Result excludes one trailing terminator.
func (self *Assembler) Feed(b byte) (string, bool) {
	limit := len(self.buf) - 1
	if self.cursor < limit {
		self.buf[self.cursor] = b
		self.cursor++
	}
	if !IsTerminator(b) && self.cursor < limit {
		return "", false
	}

	n := self.cursor
	if n > 0 && IsTerminator(self.buf[n-1]) {
		n--
	}
	return string(self.buf[:n]), true
}

// Full means further bytes are dropped until Reset.
func (self *Assembler) Full() bool { return self.cursor >= len(self.buf)-1 }

func (self *Assembler) Len() int { return self.cursor }
func (self *Assembler) Cap() int { return len(self.buf) }

// Bytes returns filled prefix including terminator, valid until next Feed or Reset.
func (self *Assembler) Bytes() []byte { return self.buf[:self.cursor] }

func (self *Assembler) Reset() {
	for i := range self.buf {
		self.buf[i] = 0
	}
	self.cursor = 0
}
