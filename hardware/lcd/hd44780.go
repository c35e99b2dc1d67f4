// Package lcd drives HD44780 compatible character displays,
// either directly in 4 bit mode over GPIO lines or through PCF8574 I2C backpack.
package lcd

import (
	"strconv"
	"time"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
)

const (
	cmdClear   byte = 0x01
	cmdEntry   byte = 0x04 // | 0x02 increment
	cmdControl byte = 0x08 // | 0x04 display on
	cmdFunc4   byte = 0x28 // 4 bit, 2 lines | 0x02 font page 1
	cmdAddress byte = 0x80

	ddramRowOffset = 0x40

	cmdWait   = 40 * time.Microsecond
	clearWait = 2 * time.Millisecond
)

// line order in PinMap and LCD.set
const (
	pinRS = iota
	pinRW
	pinE
	pinD4
	pinD5
	pinD6
	pinD7
	pinCount
)

// PinMap holds GPIO line offsets as strings, decoded from config.
type PinMap struct {
	RS string `hcl:"rs"`
	RW string `hcl:"rw"`
	E  string `hcl:"e"`
	D4 string `hcl:"d4"`
	D5 string `hcl:"d5"`
	D6 string `hcl:"d6"`
	D7 string `hcl:"d7"`
}

func (pm PinMap) lines() ([]uint32, error) {
	names := [pinCount]string{pm.RS, pm.RW, pm.E, pm.D4, pm.D5, pm.D6, pm.D7}
	result := make([]uint32, pinCount)
	for i, s := range names {
		x, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, errors.Annotatef(err, "lcd pinmap line=%q must be number", s)
		}
		result[i] = uint32(x)
	}
	return result, nil
}

// LCD is HD44780 wired in 4 bit mode, RW held low.
type LCD struct {
	width uint8
	rows  uint8
	chip  gpio.Chiper
	lines gpio.Lineser
	set   [pinCount]gpio.LineSetFunc
}

// Init opens GPIO chip by name, see InitChip.
func (self *LCD) Init(chipName string, pinmap PinMap, width, rows uint8, page1 bool) error {
	chip, err := gpio.Open(chipName, "linepanel-lcd")
	if err != nil {
		return errors.Annotatef(err, "lcd gpio open chip=%s", chipName)
	}
	if err = self.InitChip(chip, pinmap, width, rows, page1); err != nil {
		_ = chip.Close()
		return err
	}
	return nil
}

// InitChip requests output lines on opened chip and runs 4 bit init sequence.
// page1 selects alternate font table on displays that have one.
func (self *LCD) InitChip(chip gpio.Chiper, pinmap PinMap, width, rows uint8, page1 bool) error {
	nums, err := pinmap.lines()
	if err != nil {
		return err
	}
	self.lines, err = chip.OpenLines(gpio.GPIOHANDLE_REQUEST_OUTPUT, "linepanel-lcd", nums...)
	if err != nil {
		return errors.Annotate(err, "lcd gpio OpenLines")
	}
	self.chip = chip
	self.width, self.rows = width, rows
	for i, n := range nums {
		self.set[i] = self.lines.SetFunc(n)
	}

	time.Sleep(20 * time.Millisecond)
	// 8 bit reset twice, then switch to 4 bit
	self.command(0x33)
	self.command(0x32)
	fn := cmdFunc4
	if page1 {
		fn |= 0x02
	}
	self.command(fn)
	self.command(cmdControl | 0x04)
	self.Clear()
	self.command(cmdEntry | 0x02)
	return nil
}

func (self *LCD) Close() error {
	var err error
	if self.lines != nil {
		err = self.lines.Close()
	}
	if self.chip != nil {
		if e := self.chip.Close(); err == nil {
			err = e
		}
	}
	return errors.Annotate(err, "lcd close")
}

func (self *LCD) Clear() {
	self.command(cmdClear)
	time.Sleep(clearWait)
}

// CursorYX moves to 1 based row and column, false when outside of display.
func (self *LCD) CursorYX(row, column uint8) bool {
	addr, ok := rowAddress(row, column, self.width, self.rows)
	if ok {
		self.command(cmdAddress | addr)
	}
	return ok
}

func (self *LCD) Write(bs []byte) {
	for _, b := range bs {
		self.send(1, b)
	}
}

func (self *LCD) command(b byte) { self.send(0, b) }

// send writes high nibble then low nibble, then parks all lines low.
func (self *LCD) send(rs, b byte) {
	self.set[pinRS](rs)
	self.nibble(b >> 4)
	self.nibble(b & 0x0f)
	time.Sleep(cmdWait)
	for _, f := range self.set {
		f(0)
	}
	_ = self.lines.Flush()
}

func (self *LCD) nibble(n byte) {
	for bit := 0; bit < 4; bit++ {
		self.set[pinD4+bit]((n >> uint(bit)) & 1)
	}
	self.strobe(1)
	self.strobe(0)
}

func (self *LCD) strobe(e byte) {
	self.set[pinE](e)
	_ = self.lines.Flush()
	time.Sleep(time.Microsecond)
}

// rowAddress maps 1 based row/column to DDRAM address.
// Rows 3 and 4 continue rows 1 and 2 after width characters.
func rowAddress(row, column, width, rows uint8) (byte, bool) {
	if row == 0 || row > rows || row > 4 || column == 0 || column > width {
		return 0, false
	}
	base := [4]uint8{0, ddramRowOffset, width, ddramRowOffset + width}[row-1]
	return base + column - 1, true
}
