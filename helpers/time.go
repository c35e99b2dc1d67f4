package helpers

import (
	"sync"
	"time"
)

func IntSecondDefault(x int, def time.Duration) time.Duration {
	if x == 0 {
		return def
	}
	return time.Duration(x) * time.Second
}

func IntMillisecondDefault(x int, def time.Duration) time.Duration {
	if x == 0 {
		return def
	}
	return time.Duration(x) * time.Millisecond
}

// Sleeper is the only way core code is allowed to wait.
type Sleeper interface {
	Sleep(d time.Duration)
}

type RealSleeper struct{}

func (RealSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// FakeSleeper returns immediately and records requested durations.
type FakeSleeper struct {
	mu    sync.Mutex
	log   []time.Duration
	total time.Duration
	hook  func(time.Duration)
}

func (self *FakeSleeper) Sleep(d time.Duration) {
	self.mu.Lock()
	self.log = append(self.log, d)
	self.total += d
	hook := self.hook
	self.mu.Unlock()
	if hook != nil {
		hook(d)
	}
}

// SetHook is called after each Sleep outside of lock, tests use it to inject input mid-delay.
func (self *FakeSleeper) SetHook(f func(time.Duration)) {
	self.mu.Lock()
	self.hook = f
	self.mu.Unlock()
}

func (self *FakeSleeper) Calls() []time.Duration {
	self.mu.Lock()
	defer self.mu.Unlock()
	return append([]time.Duration(nil), self.log...)
}

func (self *FakeSleeper) Total() time.Duration {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.total
}

func (self *FakeSleeper) Reset() {
	self.mu.Lock()
	self.log = self.log[:0]
	self.total = 0
	self.mu.Unlock()
}
