package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/c-bata/go-prompt"
	"github.com/stretchr/testify/assert"
	"github.com/temoto/linepanel/helpers/cli"
	"github.com/temoto/linepanel/internal/session"
	"github.com/temoto/linepanel/internal/state"
)

func newTestSim(t testing.TB) (*simulator, *bytes.Buffer) {
	_, g, th := state.NewTestContext(t, `display { driver = "mock" }`)
	out := &bytes.Buffer{}
	return &simulator{
		g:         g,
		out:       out,
		source:    th.Source,
		button:    th.Button,
		indicator: th.Indicator,
	}, out
}

func TestSimScript(t *testing.T) {
	t.Parallel()

	sim, out := newTestSim(t)
	r := sim.g.Runner
	cli.RunScript(strings.NewReader(`
# greet
send Hello
`), sim.exec)
	assert.Equal(t, "Hello\n", sim.source.Pending())
	r.Tick()
	assert.True(t, sim.indicator.Value())

	sim.exec("state")
	assert.Contains(t, out.String(), "DisplayingData indicator=true")

	sim.exec("press")
	r.Tick()
	r.Tick()
	assert.Equal(t, session.StateAwaitingData, r.Session().State())
	assert.False(t, sim.indicator.Value())

	sim.exec("raw abc\\r")
	assert.Equal(t, "abc\r", sim.source.Pending())
	r.Tick()
	sim.exec("clear")
	r.Tick()
	assert.Equal(t, session.StateAwaitingData, r.Session().State())

	sim.exec("hex 48 69 0a")
	assert.Equal(t, "Hi\n", sim.source.Pending())
	sim.exec("hex zz")
	assert.Contains(t, out.String(), "hex:")

	sim.exec("stat")
	assert.Contains(t, out.String(), "messages=2 overflows=0 acks=1 clears=2")

	sim.exec("bogus")
	assert.Contains(t, out.String(), `unknown command="bogus"`)

	sim.exec("quit")
	assert.False(t, sim.g.Alive.IsRunning())
}

func TestSimComplete(t *testing.T) {
	t.Parallel()

	sim, _ := newTestSim(t)
	b := prompt.NewBuffer()
	b.InsertText("st", false, true)
	got := sim.complete(*b.Document())
	texts := make([]string, len(got))
	for i, s := range got {
		texts[i] = s.Text
	}
	assert.Equal(t, []string{"state", "stat"}, texts)

	b.InsertText("ate x", false, true)
	assert.Nil(t, sim.complete(*b.Document()))
}
