package helpers

import (
	"sync"
	"time"
)

// Backoff grows retry delay from Min by factor K up to Max.
// Zero value retries immediately.
type Backoff struct {
	Min time.Duration
	Max time.Duration
	K   float64

	mu   sync.Mutex
	next time.Duration
}

// DelayAfter returns 0 after success, otherwise next delay.
//   for {
//     err := op()
//     sleep(backoff.DelayAfter(err == nil))
//   }
func (self *Backoff) DelayAfter(success bool) time.Duration {
	if success {
		self.Reset()
		return 0
	}
	return self.Failure()
}

// Failure returns current delay and grows the next one.
func (self *Backoff) Failure() time.Duration {
	self.mu.Lock()
	defer self.mu.Unlock()
	d := self.next
	if d < self.Min {
		d = self.Min
	}
	if self.Max > 0 && d > self.Max {
		d = self.Max
	}
	k := self.K
	if k < 1 {
		k = 1
	}
	self.next = time.Duration(float64(d) * k)
	return d.Truncate(time.Millisecond)
}

func (self *Backoff) Reset() {
	self.mu.Lock()
	self.next = 0
	self.mu.Unlock()
}
