// Package textwrap splits messages into fixed width display lines.
// Width is counted in bytes, text is never trimmed or hyphenated.
package textwrap

import "bytes"

const DefaultWidth = 30

// Wrap returns ceil(len(s)/width) chunks, empty message gives nil.
// width<=0 means unlimited: whole message in one chunk.
func Wrap(s string, width int) []string {
	if len(s) == 0 {
		return nil
	}
	if width <= 0 || len(s) <= width {
		return []string{s}
	}
	lines := make([]string, 0, (len(s)+width-1)/width)
	for len(s) > width {
		lines = append(lines, s[:width])
		s = s[width:]
	}
	return append(lines, s)
}

// Count is len(Wrap(s, width)) without allocation.
func Count(s string, width int) int {
	if len(s) == 0 {
		return 0
	}
	if width <= 0 {
		return 1
	}
	return (len(s) + width - 1) / width
}

var spaceBytes = bytes.Repeat([]byte{' '}, 256)

func spaces(n int) []byte {
	if n <= len(spaceBytes) {
		return spaceBytes[:n]
	}
	return bytes.Repeat([]byte{' '}, n)
}

// JustCenter pads b with spaces on both sides, extra space goes right.
// Returns b as is when len(b) >= width-1.
func JustCenter(b []byte, width int) []byte {
	l := len(b)
	if l == 0 {
		return spaces(width)
	}
	if l >= width-1 {
		return b
	}
	padtotal := width - l
	n := padtotal / 2
	buf := make([]byte, 0, width)
	buf = append(append(append(buf, spaces(n)...), b...), spaces(n+padtotal%2)...)
	return buf
}

// PadRight returns b when len(b) >= width, otherwise pads with spaces.
func PadRight(b []byte, width int) []byte {
	l := len(b)
	if l >= width {
		return b
	}
	buf := make([]byte, 0, width)
	return append(append(buf, b...), spaces(width-l)...)
}

// PadLeft is PadRight mirrored, used for right alignment.
func PadLeft(b []byte, width int) []byte {
	l := len(b)
	if l >= width {
		return b
	}
	buf := make([]byte, 0, width)
	return append(append(buf, spaces(width-l)...), b...)
}
