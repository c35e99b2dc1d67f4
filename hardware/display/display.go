// Package display defines the text drawing capability consumed by the
// presenter and its backends: graphic framebuffer, character LCD, terminal
// and in-memory mock.
package display

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("align(%d)", uint8(a))
}

func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center":
		return AlignCenter, nil
	case "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	}
	return AlignCenter, errors.NotValidf("align=%s", s)
}

// Style is applied once at init. Character surfaces ignore colors.
type Style struct {
	Foreground color.RGBA
	Background color.RGBA
	// Pixel height of one addressable line, graphic surfaces only.
	LineHeight int
}

type Surface interface {
	Clear(bg color.RGBA)
	SetStyle(s Style)
	// Line is zero based fixed vertical slot. Out of range lines are ignored.
	DrawTextAt(line int, text string, align Align)
}

var (
	White    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Black    = color.RGBA{0, 0, 0, 0xff}
	DarkBlue = color.RGBA{0x00, 0x00, 0x80, 0xff}
)

var namedColors = map[string]color.RGBA{
	"white":    White,
	"black":    Black,
	"darkblue": DarkBlue,
	"blue":     {0x00, 0x00, 0xff, 0xff},
	"red":      {0xff, 0x00, 0x00, 0xff},
	"green":    {0x00, 0xff, 0x00, 0xff},
	"yellow":   {0xff, 0xff, 0x00, 0xff},
}

// ParseColor accepts known names and #rrggbb.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return color.RGBA{}, errors.Annotatef(err, "color=%s", s)
		}
		return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
	}
	return color.RGBA{}, errors.NotValidf("color=%s", s)
}
