package state

import (
	"context"
	"testing"

	"github.com/temoto/linepanel/hardware/display"
	"github.com/temoto/linepanel/hardware/pin"
	"github.com/temoto/linepanel/hardware/uart"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/log2"
)

type TestHardware struct {
	Display   *display.MockSurface
	Source    *uart.MockSource
	Button    *pin.MockInput
	Indicator *pin.MockOutput
	Sleeper   *helpers.FakeSleeper
}

// NewTestContext builds Global with mock hardware and fake sleeper.
func NewTestContext(t testing.TB, confString string) (context.Context, *Global, *TestHardware) {
	fs := NewMockFullReader(map[string]string{
		"test-inline": confString,
	})

	log := log2.NewTest(t, log2.LDebug)
	// log := log2.NewStderr(log2.LDebug) // useful with panics
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log)
	th := &TestHardware{
		Display:   display.NewMockSurface(),
		Source:    uart.NewMockSource(""),
		Button:    &pin.MockInput{},
		Indicator: &pin.MockOutput{},
		Sleeper:   &helpers.FakeSleeper{},
	}
	g.Hardware.Display = th.Display
	g.Hardware.Source = th.Source
	g.Hardware.Button = th.Button
	g.Hardware.Indicator = th.Indicator
	g.Sleeper = th.Sleeper
	g.MustInit(ctx, MustReadConfig(log, fs, "test-inline"))
	return ctx, g, th
}
