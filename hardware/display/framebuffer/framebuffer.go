// Package framebuffer writes RGBA images into linux /dev/fbN.
package framebuffer

//go:generate sh -ec "go tool cgo -godefs _defs.go >defs_linux.go && go fmt ."

import (
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"unsafe"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

type Framebuffer struct {
	buf   []byte
	dev   *os.File
	finfo fixedScreenInfo
	vinfo variableScreenInfo
}

func New(dev string) (*Framebuffer, error) {
	devFile, err := os.OpenFile(dev, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, errors.Annotate(err, "open")
	}
	fb := &Framebuffer{dev: devFile}
	fd := fb.dev.Fd()

	if err = ioctl(fd, getFixedScreenInfo, uintptr(unsafe.Pointer(&fb.finfo))); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "getFixedScreenInfo")
	}

	if err = ioctl(fd, getVariableScreenInfo, uintptr(unsafe.Pointer(&fb.vinfo))); err != nil {
		fb.dev.Close()
		return nil, errors.Annotate(err, "getVariableScreenInfo")
	}
	if !supported(&fb.vinfo) {
		fb.dev.Close()
		return nil, errors.NotSupportedf("color model bpp=%d", fb.vinfo.Bits_per_pixel)
	}

	fb.buf = make([]byte, fb.finfo.Line_length*fb.vinfo.Yres)
	return fb, nil
}

func (fb *Framebuffer) Close() error {
	return fb.dev.Close()
}

func (fb *Framebuffer) Flush() error {
	_, err := fb.dev.WriteAt(fb.buf, 0)
	return err
}

func (fb *Framebuffer) Size() image.Point {
	return image.Point{X: int(fb.vinfo.Xres), Y: int(fb.vinfo.Yres)}
}

// Sets all pixels in internal buffer, call Flush() to write to hardware.
func (fb *Framebuffer) Update(img *image.RGBA) error {
	return encode(fb.buf, int(fb.finfo.Line_length), &fb.vinfo, img)
}

var rgb565 = variableScreenInfo{
	Red:   bitField{Offset: 11, Length: 5},
	Green: bitField{Offset: 5, Length: 6},
	Blue:  bitField{Offset: 0, Length: 5},
}

func supported(v *variableScreenInfo) bool {
	switch v.Bits_per_pixel {
	case 16:
		return v.Red == rgb565.Red && v.Green == rgb565.Green && v.Blue == rgb565.Blue
	case 32:
		return v.Red.Length == 8 && v.Green.Length == 8 && v.Blue.Length == 8
	}
	return false
}

func encode(dst []byte, stride int, v *variableScreenInfo, img *image.RGBA) error {
	size := img.Bounds().Size()
	w, h := minInt(size.X, int(v.Xres)), minInt(size.Y, int(v.Yres))
	switch v.Bits_per_pixel {
	case 16:
		for y := 0; y < h; y++ {
			row := dst[y*stride:]
			for x := 0; x < w; x++ {
				binary.LittleEndian.PutUint16(row[x*2:], encode565(img.RGBAAt(x, y)))
			}
		}
		return nil

	case 32:
		for y := 0; y < h; y++ {
			row := dst[y*stride:]
			for x := 0; x < w; x++ {
				c := img.RGBAAt(x, y)
				word := uint32(c.R)<<v.Red.Offset | uint32(c.G)<<v.Green.Offset | uint32(c.B)<<v.Blue.Offset
				binary.LittleEndian.PutUint32(row[x*4:], word)
			}
		}
		return nil
	}
	return errors.NotSupportedf("color model bpp=%d", v.Bits_per_pixel)
}

func encode565(c color.RGBA) uint16 {
	return (uint16(c.R) & 0xf8 << 8) | (uint16(c.G) & 0xfc << 3) | (uint16(c.B) & 0xf8 >> 3)
}

func ioctl(fd uintptr, cmd uintptr, data uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, data); errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}

func minInt(i1, i2 int) int {
	if i1 <= i2 {
		return i1
	}
	return i2
}
