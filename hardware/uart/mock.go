package uart

import "sync"

// MockSource is in-memory Source, Push emulates bytes arriving on the wire.
type MockSource struct {
	mu    sync.Mutex
	buf   []byte
	reads int
}

var _ Source = &MockSource{} // compile-time interface test

func NewMockSource(initial string) *MockSource {
	return &MockSource{buf: []byte(initial)}
}

func (self *MockSource) Push(s string) {
	self.mu.Lock()
	self.buf = append(self.buf, s...)
	self.mu.Unlock()
}

func (self *MockSource) Readable() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.buf) > 0
}

func (self *MockSource) ReadByte() (byte, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if len(self.buf) == 0 {
		return 0, ErrEmpty
	}
	b := self.buf[0]
	self.buf = self.buf[1:]
	self.reads++
	return b, nil
}

func (self *MockSource) Pending() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return string(self.buf)
}

func (self *MockSource) Reads() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.reads
}
