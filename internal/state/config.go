package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/linepanel/hardware/display"
	"github.com/temoto/linepanel/hardware/lcd"
	"github.com/temoto/linepanel/hardware/pin"
	"github.com/temoto/linepanel/hardware/uart"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/internal/presenter"
	"github.com/temoto/linepanel/internal/session"
	"github.com/temoto/linepanel/internal/tele"
	"github.com/temoto/linepanel/internal/textwrap"
	"github.com/temoto/linepanel/log2"
)

const DefaultConfigName = "linepanel.hcl"

const (
	DisplayFramebuffer = "framebuffer"
	DisplayHD44780     = "hd44780"
	DisplayI2C         = "i2c"
	DisplayTerm        = "term"
	DisplayMock        = "mock"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	LogDebug bool          `hcl:"log_debug"`
	Serial   uart.Config   `hcl:"serial"`
	Display  DisplayConfig `hcl:"display"`
	Session  struct {
		Trigger    string `hcl:"trigger"`
		BufferSize int    `hcl:"buffer_size"`
		DebounceMs int    `hcl:"debounce_ms"`
		TickMs     int    `hcl:"tick_ms"`
	} `hcl:"session"`
	Indicator pin.Config  `hcl:"indicator"`
	Button    pin.Config  `hcl:"button"`
	Tele      tele.Config `hcl:"tele"`

	_copy_guard sync.Mutex //nolint:unused
}

type DisplayConfig struct { //nolint:maligned
	Driver       string           `hcl:"driver"`
	LogDebug     bool             `hcl:"log_debug"`
	CharsPerLine int              `hcl:"chars_per_line"`
	Header       string           `hcl:"header"`
	HeaderLine   int              `hcl:"header_line"`
	BodyLine     int              `hcl:"body_line"`
	Align        string           `hcl:"align"`
	Foreground   string           `hcl:"foreground"`
	Background   string           `hcl:"background"`
	DwellMs      int              `hcl:"dwell_ms"`
	Font         string           `hcl:"font"`
	LineHeight   int              `hcl:"line_height"`
	Idle         presenter.Screen `hcl:"idle"`
	Startup      presenter.Screen `hcl:"startup"`

	Framebuffer struct {
		Device string `hcl:"device"`
	} `hcl:"framebuffer"`
	HD44780 struct { //nolint:maligned
		PinChip   string     `hcl:"pin_chip"`
		Pinmap    lcd.PinMap `hcl:"pinmap"`
		Page1     bool       `hcl:"page1"`
		Width     int        `hcl:"width"`
		Rows      int        `hcl:"rows"`
		Codepage  string     `hcl:"codepage"`
		FirstLine int        `hcl:"first_line"`
	} `hcl:"hd44780"`
	I2C struct {
		Bus       string `hcl:"bus"`
		Address   int    `hcl:"address"`
		Width     int    `hcl:"width"`
		Rows      int    `hcl:"rows"`
		Codepage  string `hcl:"codepage"`
		FirstLine int    `hcl:"first_line"`
	} `hcl:"i2c"`
	Term struct {
		Width int  `hcl:"width"`
		Ansi  bool `hcl:"ansi"`
	} `hcl:"term"`
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

// NewConfig returns defaults. Config files are decoded on top,
// so only scalar fields are pre-filled here. Block lists are defaulted by consumers.
func NewConfig() *Config {
	pc := presenter.DefaultConfig()
	sc := session.DefaultConfig()
	c := &Config{includeSeen: make(map[string]struct{})}
	c.Serial.Baudrate = uart.DefaultBaudrate
	c.Serial.Buffer = uart.DefaultBufferSize
	c.Display.Driver = DisplayTerm
	c.Display.CharsPerLine = textwrap.DefaultWidth
	c.Display.Header = pc.Header
	c.Display.HeaderLine = pc.HeaderLine
	c.Display.BodyLine = pc.BodyLine
	c.Display.Align = pc.Align.String()
	c.Display.Foreground = "darkblue"
	c.Display.Background = "white"
	c.Display.DwellMs = int(pc.Dwell.Milliseconds())
	c.Display.Framebuffer.Device = "/dev/fb0"
	c.Display.HD44780.Width = 16
	c.Display.HD44780.Rows = 2
	c.Display.I2C.Address = 0x27
	c.Display.I2C.Width = 20
	c.Display.I2C.Rows = 4
	c.Display.Term.Width = 32
	c.Session.Trigger = sc.Trigger
	c.Session.BufferSize = sc.BufferSize
	c.Session.DebounceMs = int(sc.Debounce.Milliseconds())
	c.Session.TickMs = int(sc.Tick.Milliseconds())
	c.Button.ActiveLow = true
	return c
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s", source.Name)
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := NewConfig()
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	if len(errs) == 0 {
		errs = append(errs, c.Validate())
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}

func (c *Config) Validate() error {
	errs := make([]error, 0)
	if _, err := c.PresenterConfig(); err != nil {
		errs = append(errs, err)
	}
	if _, err := session.New(c.SessionConfig()); err != nil {
		errs = append(errs, err)
	}
	switch c.Display.Driver {
	case DisplayFramebuffer, DisplayHD44780, DisplayI2C, DisplayTerm, DisplayMock:
	default:
		errs = append(errs, errors.NotValidf("config display.driver=%s", c.Display.Driver))
	}
	for _, sc := range []struct {
		name   string
		screen presenter.Screen
	}{{"idle", c.Display.Idle}, {"startup", c.Display.Startup}} {
		for _, l := range sc.screen.Lines {
			if l.Text == "" {
				errs = append(errs, errors.NotValidf("config display.%s line row=%d text=empty", sc.name, l.Line))
			}
		}
	}
	if c.Tele.Enabled && c.Tele.MqttBroker == "" {
		errs = append(errs, errors.NotValidf("config tele.enable=true with mqtt_broker=empty"))
	}
	return helpers.FoldErrors(errs)
}

func (c *Config) PresenterConfig() (presenter.Config, error) {
	pc := presenter.Config{
		Header:     c.Display.Header,
		HeaderLine: c.Display.HeaderLine,
		BodyLine:   c.Display.BodyLine,
		Dwell:      helpers.IntMillisecondDefault(c.Display.DwellMs, presenter.DefaultDwell),
		Idle:       c.Display.Idle,
		Startup:    c.Display.Startup,
	}
	errs := make([]error, 0)
	var err error
	if pc.Align, err = display.ParseAlign(c.Display.Align); err != nil {
		errs = append(errs, errors.Annotate(err, "config display.align"))
	}
	if pc.Style.Foreground, err = display.ParseColor(c.Display.Foreground); err != nil {
		errs = append(errs, errors.Annotate(err, "config display.foreground"))
	}
	if pc.Style.Background, err = display.ParseColor(c.Display.Background); err != nil {
		errs = append(errs, errors.Annotate(err, "config display.background"))
	}
	pc.Style.LineHeight = c.Display.LineHeight
	if c.Display.DwellMs < 0 {
		errs = append(errs, errors.NotValidf("config display.dwell_ms=%d", c.Display.DwellMs))
	}
	return pc, helpers.FoldErrors(errs)
}

func (c *Config) SessionConfig() session.Config {
	return session.Config{
		Trigger:    c.Session.Trigger,
		Width:      c.Display.CharsPerLine,
		BufferSize: c.Session.BufferSize,
		Debounce:   helpers.IntMillisecondDefault(c.Session.DebounceMs, 0),
		Tick:       helpers.IntMillisecondDefault(c.Session.TickMs, session.DefaultTick),
	}
}
