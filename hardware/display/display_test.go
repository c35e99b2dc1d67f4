package display

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/linepanel/log2"
)

func TestParse(t *testing.T) {
	t.Parallel()

	a, err := ParseAlign("Right")
	require.NoError(t, err)
	assert.Equal(t, AlignRight, a)
	a, err = ParseAlign("")
	require.NoError(t, err)
	assert.Equal(t, AlignCenter, a)
	_, err = ParseAlign("justify")
	assert.Error(t, err)

	c, err := ParseColor("darkblue")
	require.NoError(t, err)
	assert.Equal(t, DarkBlue, c)
	c, err = ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 0xff}, c)
	_, err = ParseColor("#zz")
	assert.Error(t, err)
	_, err = ParseColor("#gggggg")
	assert.Error(t, err)
}

func TestTextSurface(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	dev := NewMockDevicer(4, 16)
	_, err := NewTextSurface(dev, TextSurfaceConfig{Width: 0, Rows: 4}, log)
	require.Error(t, err)
	_, err = NewTextSurface(dev, TextSurfaceConfig{Width: 16, Rows: 4, Codepage: "no-such-codepage"}, log)
	require.Error(t, err)

	s, err := NewTextSurface(dev, TextSurfaceConfig{Width: 16, Rows: 4, FirstLine: 1}, log)
	require.NoError(t, err)
	s.Clear(White)
	assert.Equal(t, 1, dev.Clears())
	s.DrawTextAt(1, "Connected!", AlignCenter)
	s.DrawTextAt(3, "Hello", AlignLeft)
	s.DrawTextAt(4, "right", AlignRight)
	s.DrawTextAt(5, "dropped", AlignLeft)
	s.DrawTextAt(0, "dropped", AlignLeft)
	s.DrawTextAt(2, "0123456789abcdefTAIL", AlignCenter)

	expect := strings.Join([]string{
		"   Connected!   ",
		"0123456789abcdef",
		"Hello           ",
		"           right",
	}, "\n")
	assert.Equal(t, expect, dev.String())
	assert.Equal(t, "Hello           ", s.Rows()[2])

	s.Clear(Black)
	assert.Equal(t, strings.Repeat(" ", 16), strings.Split(dev.String(), "\n")[0])
	assert.Equal(t, "", s.Rows()[0])
}

func TestTextSurfaceCodepage(t *testing.T) {
	t.Parallel()

	dev := NewMockDevicer(2, 8)
	s, err := NewTextSurface(dev, TextSurfaceConfig{Width: 8, Rows: 2, Codepage: "windows-1251"}, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xcf, 0xf0, 0xe8}, s.Translate("При"))
	assert.Equal(t, []byte("ok"), s.Translate("ok"))
	assert.Equal(t, []byte{}, s.Translate(""))
}

func TestTermSurface(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBuffer(nil)
	s := NewTermSurface(buf, 10, false, log2.NewTest(t, log2.LDebug))
	s.Clear(White)
	buf.Reset()
	s.DrawTextAt(1, "hey", AlignCenter)
	expect := "+----------+\n" +
		"|          |\n" +
		"|   hey    |\n" +
		"+----------+\n"
	assert.Equal(t, expect, buf.String())
}

type fakeFramer struct {
	size    image.Point
	updates int
	flushes int
	last    *image.RGBA
}

func (self *fakeFramer) Size() image.Point { return self.size }
func (self *fakeFramer) Update(img *image.RGBA) error {
	self.updates++
	self.last = img
	return nil
}
func (self *fakeFramer) Flush() error { self.flushes++; return nil }

func TestGraphicSurface(t *testing.T) {
	t.Parallel()

	fr := &fakeFramer{size: image.Point{X: 240, Y: 320}}
	face, err := FontFace("8x16")
	require.NoError(t, err)
	_, err = FontFace("comic-sans")
	require.Error(t, err)
	s := NewGraphicSurface(fr, face, log2.NewTest(t, log2.LDebug))
	s.SetStyle(Style{Foreground: DarkBlue, Background: White, LineHeight: 16})
	s.Clear(White)
	assert.Equal(t, 1, fr.flushes)
	assert.Equal(t, White, s.Canvas().RGBAAt(120, 20))

	s.DrawTextAt(1, "Connected!", AlignCenter)
	assert.Equal(t, 2, fr.updates)
	inked := func(top, bottom int) int {
		n := 0
		for y := top; y < bottom; y++ {
			for x := 0; x < 240; x++ {
				if s.Canvas().RGBAAt(x, y) != White {
					n++
				}
			}
		}
		return n
	}
	assert.Greater(t, inked(16, 32), 0)
	assert.Equal(t, 0, inked(0, 16))
	assert.Equal(t, 0, inked(32, 320))

	// out of screen, no flush
	s.DrawTextAt(20, "below", AlignLeft)
	assert.Equal(t, 2, fr.updates)
}

func TestMockSurface(t *testing.T) {
	t.Parallel()

	s := NewMockSurface()
	s.SetStyle(Style{Foreground: DarkBlue})
	s.Clear(White)
	s.DrawTextAt(3, "b", AlignCenter)
	s.DrawTextAt(1, "a", AlignLeft)
	assert.Equal(t, "01|a\n03|b\n", s.String())
	ops := s.Ops()
	require.Len(t, ops, 4)
	assert.Equal(t, "draw 3 center \"b\"", ops[2].String())
	assert.Equal(t, DarkBlue, s.Style().Foreground)
	line, ok := s.Line(1)
	assert.True(t, ok)
	assert.Equal(t, "a", line)
	s.ResetOps()
	assert.Len(t, s.Ops(), 0)
}
