// Package presenter lays out screens on display.Surface:
// message with header, idle prompt and boot screen.
package presenter

import (
	"time"

	"github.com/temoto/linepanel/hardware/display"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/log2"
)

const (
	DefaultDwell      = 2500 * time.Millisecond
	DefaultHeader     = "Connected!"
	DefaultHeaderLine = 1
	DefaultBodyLine   = 3
)

type Screen struct {
	Lines []ScreenLine `hcl:"line"`
}

type ScreenLine struct {
	Line int    `hcl:"row"`
	Text string `hcl:"text"`
}

func DefaultIdle() Screen {
	return Screen{Lines: []ScreenLine{{2, "SEARCHING FOR FACE"}, {4, "USER..."}}}
}

func DefaultStartup() Screen {
	return Screen{Lines: []ScreenLine{{2, "START UP"}, {4, "Waiting for data..."}}}
}

type Config struct {
	Header     string        `hcl:"header"`
	HeaderLine int           `hcl:"header_line"`
	BodyLine   int           `hcl:"body_line"`
	Align      display.Align `hcl:"-"`
	Style      display.Style `hcl:"-"`
	Dwell      time.Duration `hcl:"-"`
	Idle       Screen        `hcl:"idle"`
	Startup    Screen        `hcl:"startup"`
}

// DefaultConfig is used as base before reading config file,
// line numbers are not defaulted later since zero is a valid line.
func DefaultConfig() Config {
	return Config{
		Header:     DefaultHeader,
		HeaderLine: DefaultHeaderLine,
		BodyLine:   DefaultBodyLine,
		Align:      display.AlignCenter,
		Style:      display.Style{Foreground: display.DarkBlue, Background: display.White},
		Dwell:      DefaultDwell,
	}
}

// Presenter owns no state besides config, all drawing goes to surface.
type Presenter struct {
	log     *log2.Log
	surface display.Surface
	sleeper helpers.Sleeper
	c       Config
}

func New(surface display.Surface, sleeper helpers.Sleeper, c Config, log *log2.Log) *Presenter {
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.Dwell == 0 {
		c.Dwell = DefaultDwell
	}
	if len(c.Idle.Lines) == 0 {
		c.Idle = DefaultIdle()
	}
	if len(c.Startup.Lines) == 0 {
		c.Startup = DefaultStartup()
	}
	if c.Style == (display.Style{}) {
		c.Style = display.Style{Foreground: display.DarkBlue, Background: display.White}
	}
	if sleeper == nil {
		sleeper = helpers.RealSleeper{}
	}
	return &Presenter{log: log, surface: surface, sleeper: sleeper, c: c}
}

func (self *Presenter) Config() Config { return self.c }

// ShowMessage draws header and wrapped body, then holds for dwell.
func (self *Presenter) ShowMessage(lines []string) {
	self.surface.Clear(self.c.Style.Background)
	self.surface.DrawTextAt(self.c.HeaderLine, self.c.Header, self.c.Align)
	for i, l := range lines {
		self.surface.DrawTextAt(self.c.BodyLine+i, l, self.c.Align)
	}
	self.log.Debugf("presenter message lines=%d dwell=%v", len(lines), self.c.Dwell)
	self.sleeper.Sleep(self.c.Dwell)
}

func (self *Presenter) ShowIdle() {
	self.drawScreen(self.c.Idle)
}

// ShowStartup applies style once, then draws boot screen.
func (self *Presenter) ShowStartup() {
	self.surface.SetStyle(self.c.Style)
	self.drawScreen(self.c.Startup)
}

func (self *Presenter) drawScreen(s Screen) {
	self.surface.Clear(self.c.Style.Background)
	for _, l := range s.Lines {
		self.surface.DrawTextAt(l.Line, l.Text, self.c.Align)
	}
}
