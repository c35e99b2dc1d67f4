package state

import (
	"os"

	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/linepanel/hardware/display"
	"github.com/temoto/linepanel/hardware/display/framebuffer"
	"github.com/temoto/linepanel/hardware/lcd"
	"github.com/temoto/linepanel/hardware/pin"
	"github.com/temoto/linepanel/hardware/uart"
	"github.com/temoto/linepanel/log2"
)

type hardware struct {
	Display   display.Surface
	Source    uart.Source
	Button    pin.Input
	Indicator pin.Output
}

func (g *Global) initDisplay() []error {
	// This may only be already set by tests or simulator
	if g.Hardware.Display != nil {
		return nil
	}
	cfg := &g.Config.Display
	log := g.Log.Named("display")
	if !cfg.LogDebug {
		log.SetLevel(log2.LInfo)
	}

	switch cfg.Driver {
	case DisplayFramebuffer:
		fb, err := framebuffer.New(cfg.Framebuffer.Device)
		if err != nil {
			return []error{errors.Annotatef(err, "config: display.framebuffer.device=%s", cfg.Framebuffer.Device)}
		}
		g.addCloser(fb)
		face, err := display.FontFace(cfg.Font)
		if err != nil {
			return []error{errors.Annotate(err, "config: display.font")}
		}
		g.Hardware.Display = display.NewGraphicSurface(fb, face, log)

	case DisplayHD44780:
		hc := &cfg.HD44780
		dev := new(lcd.LCD)
		if err := dev.Init(hc.PinChip, hc.Pinmap, uint8(hc.Width), uint8(hc.Rows), hc.Page1); err != nil {
			return []error{errors.Annotatef(err, "config: display.hd44780=%#v", hc)}
		}
		g.addCloser(dev)
		s, err := display.NewTextSurface(dev, display.TextSurfaceConfig{
			Codepage:  hc.Codepage,
			Width:     hc.Width,
			Rows:      hc.Rows,
			FirstLine: hc.FirstLine,
		}, log)
		if err != nil {
			return []error{errors.Annotate(err, "config: display.hd44780")}
		}
		g.Hardware.Display = s

	case DisplayI2C:
		ic := &cfg.I2C
		dev, err := lcd.OpenI2C(ic.Bus, uint8(ic.Address), uint8(ic.Width), uint8(ic.Rows))
		if err != nil {
			return []error{errors.Annotatef(err, "config: display.i2c bus=%s address=%#x", ic.Bus, ic.Address)}
		}
		g.addCloser(dev)
		s, err := display.NewTextSurface(dev, display.TextSurfaceConfig{
			Codepage:  ic.Codepage,
			Width:     ic.Width,
			Rows:      ic.Rows,
			FirstLine: ic.FirstLine,
		}, log)
		if err != nil {
			return []error{errors.Annotate(err, "config: display.i2c")}
		}
		g.Hardware.Display = s

	case DisplayTerm:
		ansi := cfg.Term.Ansi && isatty.IsTerminal(os.Stdout.Fd())
		g.Hardware.Display = display.NewTermSurface(os.Stdout, cfg.Term.Width, ansi, log)

	case DisplayMock:
		g.Hardware.Display = display.NewMockSurface()

	default:
		return []error{errors.NotSupportedf("config: display.driver=%s", cfg.Driver)}
	}
	log.Infof("display driver=%s", cfg.Driver)
	return nil
}

func (g *Global) initSerial() []error {
	if g.Hardware.Source != nil {
		return nil
	}
	cfg := &g.Config.Serial
	if cfg.Device == "" {
		g.Log.Infof("config: serial.device=empty, using mock source")
		g.Hardware.Source = uart.NewMockSource("")
		return nil
	}
	src, err := uart.Open(*cfg, g.Log.Named("uart"))
	if err != nil {
		return []error{errors.Annotate(err, "config: serial")}
	}
	g.addCloser(src)
	g.Hardware.Source = src
	return nil
}

func (g *Global) initPins() []error {
	errs := make([]error, 0, 2)
	if g.Hardware.Indicator == nil {
		out, closer, err := pin.OpenOutput(g.Config.Indicator, g.Log.Named("indicator"))
		if err != nil {
			errs = append(errs, errors.Annotate(err, "config: indicator"))
		} else {
			g.addCloser(closer)
			g.Hardware.Indicator = out
		}
	}
	if g.Hardware.Button == nil {
		in, closer, err := pin.OpenInput(g.Config.Button, g.Log.Named("button"))
		if err != nil {
			errs = append(errs, errors.Annotate(err, "config: button"))
		} else {
			g.addCloser(closer)
			g.Hardware.Button = in
		}
	}
	return errs
}
