package pin

import (
	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
)

const consumer = "linepanel"

// CdevPin is single line on linux GPIO character device.
type CdevPin struct {
	chip  gpio.Chiper
	lines gpio.Lineser
	line  uint32
	set   gpio.LineSetFunc
}

func openCdev(chipPath string, line uint32, flag gpio.RequestFlag, activeLow bool) (*CdevPin, error) {
	chip, err := gpio.Open(chipPath, consumer)
	if err != nil {
		return nil, errors.Trace(err)
	}
	p, err := NewCdevPin(chip, line, flag, activeLow)
	if err != nil {
		chip.Close()
		return nil, err
	}
	return p, nil
}

// NewCdevPin takes ownership of chip.
func NewCdevPin(chip gpio.Chiper, line uint32, flag gpio.RequestFlag, activeLow bool) (*CdevPin, error) {
	if activeLow {
		flag |= gpio.GPIOHANDLE_REQUEST_ACTIVE_LOW
	}
	lines, err := chip.OpenLines(flag, consumer, line)
	if err != nil {
		return nil, errors.Annotatef(err, "OpenLines line=%d", line)
	}
	p := &CdevPin{chip: chip, lines: lines, line: line}
	if flag&gpio.GPIOHANDLE_REQUEST_OUTPUT != 0 {
		p.set = lines.SetFunc(line)
	}
	return p, nil
}

func OpenCdevOutput(chip string, line uint32, activeLow bool) (*CdevPin, error) {
	return openCdev(chip, line, gpio.GPIOHANDLE_REQUEST_OUTPUT, activeLow)
}

func OpenCdevInput(chip string, line uint32, activeLow bool) (*CdevPin, error) {
	return openCdev(chip, line, gpio.GPIOHANDLE_REQUEST_INPUT, activeLow)
}

func (self *CdevPin) Set(on bool) error {
	if self.set == nil {
		return errors.Errorf("code error gpio line=%d is not output", self.line)
	}
	var v byte
	if on {
		v = 1
	}
	self.set(v)
	return errors.Annotatef(self.lines.Flush(), "gpio line=%d set=%d", self.line, v)
}

func (self *CdevPin) Read() (bool, error) {
	data, err := self.lines.Read()
	if err != nil {
		return false, errors.Annotatef(err, "gpio line=%d read", self.line)
	}
	return data.Values[0] != 0, nil
}

func (self *CdevPin) Close() error {
	err1 := self.lines.Close()
	err2 := self.chip.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
