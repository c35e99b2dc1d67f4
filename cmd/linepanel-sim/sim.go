package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/temoto/linepanel/hardware/pin"
	"github.com/temoto/linepanel/hardware/uart"
	"github.com/temoto/linepanel/helpers/cli"
	"github.com/temoto/linepanel/internal/state"
)

var commands = []prompt.Suggest{
	{Text: "send", Description: "send text line terminated with LF"},
	{Text: "raw", Description: "send bytes as is, escapes \\n \\r allowed"},
	{Text: "hex", Description: "send hex encoded bytes"},
	{Text: "press", Description: "press acknowledgment button once"},
	{Text: "clear", Description: "remote clear request"},
	{Text: "state", Description: "print session state"},
	{Text: "stat", Description: "print counters"},
	{Text: "quit", Description: "stop simulator"},
}

type simulator struct {
	g         *state.Global
	out       io.Writer
	source    *uart.MockSource
	button    *pin.MockInput
	indicator *pin.MockOutput
}

func (self *simulator) complete(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	return cli.FilterCommands(d, commands)
}

func (self *simulator) exec(line string) {
	cmd, arg := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		cmd, arg = line[:i], line[i+1:]
	}
	switch strings.ToLower(cmd) {
	case "send":
		self.source.Push(arg + "\n")
	case "raw":
		self.source.Push(unescape(arg))
	case "hex":
		b, err := hex.DecodeString(strings.Replace(arg, " ", "", -1))
		if err != nil {
			fmt.Fprintf(self.out, "hex: %v\n", err)
			return
		}
		self.source.Push(string(b))
	case "press":
		self.button.Press()
	case "clear":
		self.g.Runner.RequestClear()
	case "state":
		fmt.Fprintf(self.out, "%s indicator=%t pending=%q\n",
			self.g.Runner.Session().State(), self.indicator.Value(), self.source.Pending())
	case "stat":
		st := self.g.Runner.Stat()
		fmt.Fprintf(self.out, "messages=%d overflows=%d acks=%d clears=%d drained=%d last=%s\n",
			st.Session.Messages, st.Session.Overflows, st.Session.Acks, st.Session.Clears, st.Drained,
			st.LastMessage.Format("15:04:05.000"))
	case "quit", "exit":
		self.g.Stop()
	default:
		fmt.Fprintf(self.out, "unknown command=%q\n", cmd)
	}
}

var unescaper = strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t", `\\`, `\`)

func unescape(s string) string { return unescaper.Replace(s) }
