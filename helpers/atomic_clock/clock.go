// Package atomic_clock is lock free timestamp for stats shared between goroutines.
// Zero value means "never".
package atomic_clock

import (
	"sync/atomic"
	"time"
)

type Clock struct{ v int64 }

func source() int64 { return time.Now().UnixNano() }

func (c *Clock) get() int64 { return atomic.LoadInt64(&c.v) }

func (c *Clock) IsZero() bool        { return c.get() == 0 }
func (c *Clock) SetNow()             { atomic.StoreInt64(&c.v, source()) }
func (c *Clock) SetTime(t time.Time) { atomic.StoreInt64(&c.v, t.UnixNano()) }
func (c *Clock) UnixNano() int64     { return c.get() }

// Time of zero clock is zero time.Time, not unix epoch.
func (c *Clock) Time() time.Time {
	v := c.get()
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v)
}

func Now() *Clock { return &Clock{v: source()} }

// Since zero clock is huge, callers treat it as "long ago".
func Since(begin *Clock) time.Duration { return time.Duration(source() - begin.get()) }
