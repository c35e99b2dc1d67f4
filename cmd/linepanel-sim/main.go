// Interactive simulator: serial input and button come from prompt,
// display is rendered to terminal.
package main

import (
	"flag"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/linepanel/hardware/display"
	"github.com/temoto/linepanel/hardware/pin"
	"github.com/temoto/linepanel/hardware/uart"
	"github.com/temoto/linepanel/helpers/cli"
	"github.com/temoto/linepanel/internal/state"
	"github.com/temoto/linepanel/log2"
)

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagConfig := cmdline.String("config", "", "optional config file, hardware sections are ignored")
	flagDebug := cmdline.Bool("debug", false, "")
	_ = cmdline.Parse(os.Args[1:])

	log := log2.NewStderr(log2.LInfo)
	log.SetFlags(log2.LInteractiveFlags)
	if *flagDebug {
		log.SetLevel(log2.LDebug)
	}

	config := state.NewConfig()
	if *flagConfig != "" {
		config = state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	}

	ctx, g := state.NewContext(log)
	sim := &simulator{
		g:         g,
		out:       os.Stdout,
		source:    uart.NewMockSource(""),
		button:    &pin.MockInput{},
		indicator: &pin.MockOutput{},
	}
	width := config.Display.Term.Width
	if width < config.Display.CharsPerLine {
		width = config.Display.CharsPerLine
	}
	g.Hardware.Display = display.NewTermSurface(os.Stdout, width, config.Display.Term.Ansi, log)
	g.Hardware.Source = sim.source
	g.Hardware.Button = sim.button
	g.Hardware.Indicator = sim.indicator
	g.MustInit(ctx, config)

	go g.Run()
	cli.MainLoop("linepanel-sim", sim.exec, sim.complete, g.Stop)
	g.Alive.Wait()
	if err := g.Close(); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
}
