package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	ms := time.Millisecond
	b := Backoff{Min: 100 * ms, Max: time.Second, K: 2}
	expect := []time.Duration{100 * ms, 200 * ms, 400 * ms, 800 * ms, time.Second, time.Second}
	for i, e := range expect {
		assert.Equal(t, e, b.DelayAfter(false), "attempt=%d", i)
	}
	assert.Equal(t, time.Duration(0), b.DelayAfter(true))
	assert.Equal(t, 100*ms, b.Failure(), "reset to min")
}

func TestBackoffZero(t *testing.T) {
	t.Parallel()

	var b Backoff
	assert.Equal(t, time.Duration(0), b.Failure())
	assert.Equal(t, time.Duration(0), b.Failure())
}
