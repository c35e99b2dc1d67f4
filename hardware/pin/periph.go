package pin

import (
	"sync"

	"github.com/juju/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

var periphInit struct {
	once sync.Once
	err  error
}

func periphHost() error {
	periphInit.once.Do(func() {
		_, periphInit.err = host.Init()
	})
	return errors.Annotate(periphInit.err, "periph/init")
}

// PeriphPin is GPIO found by name in periph registry, e.g. GPIO17.
type PeriphPin struct {
	p         gpio.PinIO
	activeLow bool
}

func lookupPeriph(name string) (gpio.PinIO, error) {
	if err := periphHost(); err != nil {
		return nil, err
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.NotFoundf("gpio name=%s", name)
	}
	return p, nil
}

func OpenPeriphOutput(name string, activeLow bool) (*PeriphPin, error) {
	p, err := lookupPeriph(name)
	if err != nil {
		return nil, err
	}
	self := NewPeriphPin(p, activeLow)
	return self, self.Set(false)
}

func OpenPeriphInput(name string, activeLow bool) (*PeriphPin, error) {
	p, err := lookupPeriph(name)
	if err != nil {
		return nil, err
	}
	pull := gpio.PullDown
	if activeLow {
		pull = gpio.PullUp
	}
	if err = p.In(pull, gpio.NoEdge); err != nil {
		return nil, errors.Annotatef(err, "gpio name=%s In", name)
	}
	return NewPeriphPin(p, activeLow), nil
}

func NewPeriphPin(p gpio.PinIO, activeLow bool) *PeriphPin {
	return &PeriphPin{p: p, activeLow: activeLow}
}

func (self *PeriphPin) Set(on bool) error {
	return errors.Annotatef(self.p.Out(gpio.Level(on != self.activeLow)), "gpio name=%s Out", self.p.Name())
}

func (self *PeriphPin) Read() (bool, error) {
	return bool(self.p.Read()) != self.activeLow, nil
}
