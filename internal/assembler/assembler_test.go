package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedString(a *Assembler, s string) (results []string) {
	for i := 0; i < len(s); i++ {
		if msg, ok := a.Feed(s[i]); ok {
			results = append(results, msg)
		}
	}
	return results
}

func TestFeed(t *testing.T) {
	t.Parallel()

	type Case struct {
		name     string
		capacity int
		input    string
		expect   []string
		cursor   int
	}
	cases := []Case{
		{"hello-lf", 64, "Hello\n", []string{"Hello"}, 6},
		{"hello-cr", 64, "Hello\r", []string{"Hello"}, 6},
		{"empty-line", 64, "\n", []string{""}, 1},
		{"empty-cr", 64, "\r", []string{""}, 1},
		{"no-terminator", 64, "partial", nil, 7},
		{"crlf-first-wins", 64, "Hello\r", []string{"Hello"}, 6},
		{"overflow", 8, "abcdefghij", []string{"abcdefg", "abcdefg", "abcdefg", "abcdefg"}, 7},
		{"exact-fill", 8, "abcdefg", []string{"abcdefg"}, 7},
		{"terminator-after-full", 4, "abc\n", []string{"abc", "abc"}, 3},
		{"whitespace-kept", 64, "  a b  \n", []string{"  a b  "}, 8},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			a := MustNew(c.capacity)
			results := feedString(a, c.input)
			assert.Equal(t, c.expect, results)
			assert.Equal(t, c.cursor, a.Len())
			assert.LessOrEqual(t, a.Len(), a.Cap()-1)
		})
	}
}

func TestNoCompletionBelowCapacity(t *testing.T) {
	t.Parallel()

	const capacity = 64
	for n := 0; n < capacity-1; n++ {
		a := MustNew(capacity)
		results := feedString(a, strings.Repeat("x", n))
		require.Nil(t, results, "n=%d", n)
		require.False(t, a.Full())
	}
}

func TestOverflowSilentTruncation(t *testing.T) {
	t.Parallel()

	const capacity = 64
	a := MustNew(capacity)
	input := strings.Repeat("y", capacity)
	var first string
	completions := 0
	for i := 0; i < len(input); i++ {
		if msg, ok := a.Feed(input[i]); ok {
			if completions == 0 {
				first = msg
			}
			completions++
		}
	}
	assert.Equal(t, capacity-1, len(first))
	assert.Equal(t, 2, completions)
	assert.True(t, a.Full())
	assert.Equal(t, capacity-1, a.Len())
}

func TestReset(t *testing.T) {
	t.Parallel()

	a := MustNew(16)
	assert.Equal(t, []string{"first"}, feedString(a, "first\n"))
	a.Reset()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, []byte{}, a.Bytes())
	assert.Equal(t, []string{"two"}, feedString(a, "two\r"))

	a.Reset()
	a.Reset()
	assert.Equal(t, 0, a.Len())
	assert.False(t, a.Full())
}

func TestNewInvalid(t *testing.T) {
	t.Parallel()

	_, err := New(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid")
	assert.Panics(t, func() { MustNew(0) })
}
