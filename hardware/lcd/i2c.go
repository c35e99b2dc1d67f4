package lcd

import (
	"github.com/juju/errors"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

// busAdapter exposes periph I2C bus as tinygo drivers.I2C.
type busAdapter struct{ bus i2c.Bus }

func (a busAdapter) Tx(addr uint16, w, r []byte) error { return a.bus.Tx(addr, w, r) }

// I2C is HD44780 behind PCF8574 backpack.
type I2C struct {
	bus   i2c.BusCloser
	dev   hd44780i2c.Device
	width uint8
	rows  uint8
}

func OpenI2C(busName string, addr uint8, width, rows uint8) (*I2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "periph/init")
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, errors.Annotatef(err, "lcd i2c open bus=%s", busName)
	}
	self := &I2C{bus: bus, width: width, rows: rows}
	if err = self.setup(busAdapter{bus}, addr); err != nil {
		_ = bus.Close()
		return nil, errors.Annotatef(err, "lcd i2c configure bus=%s addr=%#x", busName, addr)
	}
	return self, nil
}

func (self *I2C) setup(bus drivers.I2C, addr uint8) error {
	self.dev = hd44780i2c.New(bus, addr)
	return self.dev.Configure(hd44780i2c.Config{
		Width:  self.width,
		Height: self.rows,
	})
}

func (self *I2C) Close() error {
	if self.bus == nil {
		return nil
	}
	return self.bus.Close()
}

func (self *I2C) Clear() { self.dev.ClearDisplay() }

func (self *I2C) CursorYX(row, column uint8) bool {
	if !(row > 0 && row <= self.rows) || !(column > 0 && column <= self.width) {
		return false
	}
	self.dev.SetCursor(column-1, row-1)
	return true
}

func (self *I2C) Write(b []byte) { self.dev.Print(b) }
