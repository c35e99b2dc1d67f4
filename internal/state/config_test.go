package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/linepanel/hardware/display"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/internal/presenter"
	"github.com/temoto/linepanel/internal/session"
	"github.com/temoto/linepanel/log2"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()

	type Case struct {
		name      string
		input     string
		check     func(testing.TB, *Config)
		expectErr string
	}
	cases := []Case{
		{"empty", "", func(t testing.TB, c *Config) {
			sc := c.SessionConfig()
			assert.Equal(t, session.DefaultConfig(), sc)
			pc, err := c.PresenterConfig()
			require.NoError(t, err)
			assert.Equal(t, presenter.DefaultConfig(), pc)
			assert.Equal(t, DisplayTerm, c.Display.Driver)
			assert.True(t, c.Button.ActiveLow)
			assert.False(t, c.Tele.Enabled)
		}, ""},

		{"serial", `
serial {
	device = "/dev/ttyS3"
	baudrate = 9600
}`,
			func(t testing.TB, c *Config) {
				assert.Equal(t, "/dev/ttyS3", c.Serial.Device)
				assert.Equal(t, 9600, c.Serial.Baudrate)
				assert.Equal(t, 4096, c.Serial.Buffer, "default kept")
			}, ""},

		{"session", `
session {
	trigger = "Open"
	buffer_size = 128
	debounce_ms = 0
}`,
			func(t testing.TB, c *Config) {
				sc := c.SessionConfig()
				assert.Equal(t, "Open", sc.Trigger)
				assert.Equal(t, 128, sc.BufferSize)
				assert.Equal(t, time.Duration(0), sc.Debounce)
				assert.Equal(t, session.DefaultTick, sc.Tick)
			}, ""},

		{"display", `
display {
	driver = "mock"
	chars_per_line = 16
	header = "Hi"
	header_line = 0
	body_line = 1
	align = "left"
	foreground = "#102030"
	dwell_ms = 100
	idle {
		line {
			row = 0
			text = "idle"
		}
		line {
			row = 1
			text = "prompt"
		}
	}
}`,
			func(t testing.TB, c *Config) {
				pc, err := c.PresenterConfig()
				require.NoError(t, err)
				assert.Equal(t, "Hi", pc.Header)
				assert.Equal(t, 0, pc.HeaderLine)
				assert.Equal(t, 1, pc.BodyLine)
				assert.Equal(t, display.AlignLeft, pc.Align)
				assert.Equal(t, uint8(0x20), pc.Style.Foreground.G)
				assert.Equal(t, display.White, pc.Style.Background)
				assert.Equal(t, 100*time.Millisecond, pc.Dwell)
				assert.Equal(t, []presenter.ScreenLine{{Line: 0, Text: "idle"}, {Line: 1, Text: "prompt"}}, pc.Idle.Lines)
				assert.Empty(t, pc.Startup.Lines)
				assert.Equal(t, 16, c.SessionConfig().Width)
			}, ""},

		{"pins", `
indicator {
	driver = "cdev"
	chip = "gpiochip1"
	line = 17
}
button {
	driver = "input_event"
	device = "/dev/input/event0"
	key = 28
	active_low = false
}`,
			func(t testing.TB, c *Config) {
				assert.Equal(t, "cdev", c.Indicator.Driver)
				assert.Equal(t, 17, c.Indicator.Line)
				assert.Equal(t, 28, c.Button.Key)
				assert.False(t, c.Button.ActiveLow)
			}, ""},

		{"include", `include "extra.hcl" {}`,
			func(t testing.TB, c *Config) {
				assert.Equal(t, "World", c.Session.Trigger)
			}, ""},

		{"include-optional-missing", `include "nope.hcl" { optional = true }`, nil, ""},
		{"include-required-missing", `include "nope.hcl" {}`, nil, "not found"},
		{"include-loop", `include "loop.hcl" {}`, nil, "include loop"},
		{"invalid-hcl", `session {`, nil, "config unmarshal"},
		{"invalid-driver", `display { driver = "vga" }`, nil, "display.driver=vga"},
		{"invalid-color", `display { background = "plaid" }`, nil, "display.background"},
		{"invalid-buffer", `session { buffer_size = 1 }`, nil, "capacity=1"},
		{"screen-line-split", `display { idle { line { row = 1 text = "x" } } }`, nil, "display.idle line row=1 text=empty"},
		{"tele-no-broker", `tele { enable = true }`, nil, "mqtt_broker=empty"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			fs := NewMockFullReader(map[string]string{
				"test-inline": c.input,
				"extra.hcl":   `session { trigger = "World" }`,
				"loop.hcl":    `include "test-inline" {}`,
			})
			log := log2.NewTest(t, log2.LDebug)
			cfg, err := ReadConfig(log, fs, "test-inline")
			if c.expectErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), c.expectErr)
				return
			}
			if c.check != nil {
				c.check(t, cfg)
			}
		})
	}
}

func TestSampleConfig(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	c, err := ReadConfig(log, NewOsFullReader(), "../../"+DefaultConfigName)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyAMA0", c.Serial.Device)
	assert.Equal(t, DisplayI2C, c.Display.Driver)
	assert.Equal(t, 0x27, c.Display.I2C.Address)
	assert.Equal(t, "GPIO17", c.Button.Name)
	assert.False(t, c.Tele.Enabled)
	pc, err := c.PresenterConfig()
	require.NoError(t, err)
	assert.Equal(t, 1, pc.BodyLine)
	require.Len(t, pc.Idle.Lines, 2)
	assert.Equal(t, []presenter.ScreenLine{{Line: 1, Text: "SEARCHING FOR FACE"}, {Line: 2, Text: "USER..."}}, pc.Idle.Lines)
	assert.Equal(t, []presenter.ScreenLine{{Line: 1, Text: "START UP"}, {Line: 2, Text: "Waiting for data..."}}, pc.Startup.Lines)
	assert.Equal(t, 20, c.SessionConfig().Width)

	surface := display.NewMockSurface()
	presenter.New(surface, &helpers.FakeSleeper{}, pc, log).ShowIdle()
	assert.Equal(t, "01|SEARCHING FOR FACE\n02|USER...\n", surface.String())
}
