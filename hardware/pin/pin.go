// Package pin provides digital input/output capabilities:
// LED indicator and acknowledgment button.
package pin

import (
	"io"

	"github.com/juju/errors"
	"github.com/temoto/linepanel/log2"
)

type Output interface {
	Set(on bool) error
}

// Input reports true while active. Active-low wiring is hidden by backend.
type Input interface {
	Read() (bool, error)
}

// Latcher is Input that remembers presses between reads.
// Reset forgets presses that happened before now.
type Latcher interface {
	Input
	Reset()
}

var _ Latcher = &KeyInput{} // compile-time interface test
var _ Latcher = &MockInput{}

const (
	DriverCdev       = "cdev"
	DriverPeriph     = "periph"
	DriverInputEvent = "input_event"
	DriverMock       = "mock"
)

type Config struct {
	Driver    string `hcl:"driver"`
	Chip      string `hcl:"chip"`   // cdev: /dev/gpiochip0
	Line      int    `hcl:"line"`   // cdev: line offset
	Name      string `hcl:"name"`   // periph: GPIO17
	Device    string `hcl:"device"` // input_event: /dev/input/event0
	Key       int    `hcl:"key"`    // input_event: key code
	ActiveLow bool   `hcl:"active_low"`
}

func OpenOutput(c Config, log *log2.Log) (Output, io.Closer, error) {
	switch c.Driver {
	case DriverCdev:
		p, err := OpenCdevOutput(c.Chip, uint32(c.Line), c.ActiveLow)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "pin output cdev chip=%s line=%d", c.Chip, c.Line)
		}
		return p, p, nil
	case DriverPeriph:
		p, err := OpenPeriphOutput(c.Name, c.ActiveLow)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "pin output periph name=%s", c.Name)
		}
		return p, nopCloser{}, nil
	case "", DriverMock:
		log.Infof("pin output driver=mock")
		return new(MockOutput), nopCloser{}, nil
	}
	return nil, nil, errors.NotSupportedf("pin output driver=%s", c.Driver)
}

func OpenInput(c Config, log *log2.Log) (Input, io.Closer, error) {
	switch c.Driver {
	case DriverCdev:
		p, err := OpenCdevInput(c.Chip, uint32(c.Line), c.ActiveLow)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "pin input cdev chip=%s line=%d", c.Chip, c.Line)
		}
		return p, p, nil
	case DriverPeriph:
		p, err := OpenPeriphInput(c.Name, c.ActiveLow)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "pin input periph name=%s", c.Name)
		}
		return p, nopCloser{}, nil
	case DriverInputEvent:
		p, err := OpenKeyInput(c.Device, uint16(c.Key), log)
		if err != nil {
			return nil, nil, errors.Annotatef(err, "pin input event device=%s", c.Device)
		}
		return p, p, nil
	case "", DriverMock:
		log.Infof("pin input driver=mock")
		return new(MockInput), nopCloser{}, nil
	}
	return nil, nil, errors.NotSupportedf("pin input driver=%s", c.Driver)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
