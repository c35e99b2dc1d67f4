package pin

import (
	"sync"
)

type MockOutput struct {
	mu      sync.Mutex
	value   bool
	history []bool
	err     error
}

func (self *MockOutput) Set(on bool) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.value = on
	self.history = append(self.history, on)
	return self.err
}

func (self *MockOutput) Value() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.value
}

func (self *MockOutput) History() []bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return append([]bool(nil), self.history...)
}

func (self *MockOutput) SetError(err error) {
	self.mu.Lock()
	self.err = err
	self.mu.Unlock()
}

// MockInput returns queued values first, then steady level.
type MockInput struct {
	mu    sync.Mutex
	queue []bool
	level bool
	reads int
	err   error
}

func (self *MockInput) Read() (bool, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.reads++
	if self.err != nil {
		return false, self.err
	}
	if len(self.queue) > 0 {
		v := self.queue[0]
		self.queue = self.queue[1:]
		return v, nil
	}
	return self.level, nil
}

func (self *MockInput) Set(level bool) {
	self.mu.Lock()
	self.level = level
	self.mu.Unlock()
}

// Press makes next Read return true once.
func (self *MockInput) Press() { self.Push(true) }

func (self *MockInput) Push(values ...bool) {
	self.mu.Lock()
	self.queue = append(self.queue, values...)
	self.mu.Unlock()
}

// Reset drops queued presses, steady level is kept.
func (self *MockInput) Reset() {
	self.mu.Lock()
	self.queue = nil
	self.mu.Unlock()
}

func (self *MockInput) Reads() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.reads
}

func (self *MockInput) SetError(err error) {
	self.mu.Lock()
	self.err = err
	self.mu.Unlock()
}
