package session

import (
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/alive/v2"
	"github.com/temoto/linepanel/hardware/display"
	"github.com/temoto/linepanel/hardware/pin"
	"github.com/temoto/linepanel/hardware/uart"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/internal/presenter"
	"github.com/temoto/linepanel/log2"
)

type recordReporter struct {
	mu       sync.Mutex
	states   []string
	messages []string
}

func (self *recordReporter) ReportState(s string) {
	self.mu.Lock()
	self.states = append(self.states, s)
	self.mu.Unlock()
}
func (self *recordReporter) ReportMessage(m string) {
	self.mu.Lock()
	self.messages = append(self.messages, m)
	self.mu.Unlock()
}

type env struct {
	r         *Runner
	source    *uart.MockSource
	button    *pin.MockInput
	indicator *pin.MockOutput
	surface   *display.MockSurface
	sleeper   *helpers.FakeSleeper
	reporter  *recordReporter
}

func newEnv(t testing.TB) *env {
	log := log2.NewTest(t, log2.LDebug)
	e := &env{
		source:    uart.NewMockSource(""),
		button:    &pin.MockInput{},
		indicator: &pin.MockOutput{},
		surface:   display.NewMockSurface(),
		sleeper:   &helpers.FakeSleeper{},
		reporter:  &recordReporter{},
	}
	p := presenter.New(e.surface, e.sleeper, presenter.DefaultConfig(), log)
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	e.r = NewRunner(s, Deps{
		Source:    e.source,
		Button:    e.button,
		Indicator: e.indicator,
		Display:   p,
		Sleeper:   e.sleeper,
		Reporter:  e.reporter,
	}, log)
	return e
}

func TestRunnerTrigger(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	s := e.r.Session()
	e.source.Push("Hello\r\n")
	e.r.Tick()
	assert.Equal(t, StateDisplayingData, s.State())
	assert.True(t, e.indicator.Value())
	assert.Equal(t, "01|Connected!\n03|Hello\n", e.surface.String())
	assert.Equal(t, []time.Duration{presenter.DefaultDwell}, e.sleeper.Calls())
	// LF after CR stays in transport
	assert.Equal(t, "\n", e.source.Pending())

	e.r.Tick()
	assert.Equal(t, StateDisplayingData, s.State(), "button not pressed")

	e.button.Press()
	e.r.Tick()
	assert.Equal(t, StateClearingDisplay, s.State())
	assert.Equal(t, []time.Duration{presenter.DefaultDwell, DefaultDebounce}, e.sleeper.Calls())
	assert.True(t, e.indicator.Value(), "indicator is kept until clear")

	e.r.Tick()
	assert.Equal(t, StateAwaitingData, s.State())
	assert.False(t, e.indicator.Value())
	assert.Equal(t, 0, s.Buffered())
	assert.Equal(t, "", e.source.Pending())
	assert.Equal(t, "02|SEARCHING FOR FACE\n04|USER...\n", e.surface.String())
	assert.Equal(t, []bool{true, false}, e.indicator.History())

	st := e.r.Stat()
	assert.Equal(t, uint64(1), st.Drained)
	assert.Equal(t, uint32(1), st.Session.Messages)
	assert.False(t, st.LastMessage.IsZero())
	assert.Equal(t, []string{"Hello"}, e.reporter.messages)
	assert.Equal(t, []string{"DisplayingData", "ClearingDisplay", "AwaitingData"}, e.reporter.states)
}

func TestRunnerWrapNoTrigger(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.source.Push("World\n")
	e.r.Tick()
	assert.False(t, e.indicator.Value())
	assert.Equal(t, []bool{false}, e.indicator.History())
	l, ok := e.surface.Line(3)
	assert.True(t, ok)
	assert.Equal(t, "World", l)

	e.source.Push("0123456789012345678901234567890123456789\n")
	e.r.Tick()
	e.button.Press()
	e.r.Tick()
	e.r.Tick()
	// bytes which arrived during display are drained, not assembled
	assert.Equal(t, uint64(41), e.r.Stat().Drained)
	assert.Equal(t, StateAwaitingData, e.r.Session().State())
	e.r.Tick()
	assert.Equal(t, StateAwaitingData, e.r.Session().State())
}

func TestRunnerClearRequest(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.source.Push("World\n")
	e.r.Tick()
	e.r.RequestClear()
	e.r.RequestClear()
	e.r.Tick()
	assert.Equal(t, StateAwaitingData, e.r.Session().State())
	assert.Equal(t, uint32(0), e.r.Stat().Session.Acks)
	assert.Equal(t, uint32(1), e.r.Stat().Session.Clears)
	// second request was coalesced
	e.r.Tick()
	assert.Equal(t, uint32(1), e.r.Stat().Session.Clears)
}

func TestRunnerButtonError(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.source.Push("World\n")
	e.r.Tick()
	e.button.SetError(errors.New("gpio gone"))
	e.button.Press()
	e.r.Tick()
	assert.Equal(t, StateDisplayingData, e.r.Session().State())
	assert.Equal(t, uint64(1), e.r.Stat().ReadErrors)
	e.button.SetError(nil)
	e.r.Tick()
	assert.Equal(t, StateClearingDisplay, e.r.Session().State())
}

func TestRunnerIndicatorError(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.indicator.SetError(errors.New("led"))
	e.source.Push("Hello\n")
	e.r.Tick()
	assert.Equal(t, StateDisplayingData, e.r.Session().State())
}

func TestRunnerLoop(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	a := alive.NewAlive()
	e.source.Push("Hello\n")
	states := make([]State, 0, 4)
	e.r.XXX_testHook = func(s State) {
		states = append(states, s)
		switch s {
		case StateDisplayingData:
			e.button.Press()
		case StateAwaitingData:
			a.Stop()
		}
	}
	e.r.Loop(a)
	a.Wait()
	assert.Equal(t, []State{StateDisplayingData, StateClearingDisplay, StateAwaitingData}, states)
	assert.Equal(t, DefaultTick, e.sleeper.Calls()[1])
	assert.Equal(t, presenter.DefaultDwell+DefaultDebounce+3*DefaultTick, e.sleeper.Total())
}

func TestRunnerLoopStopped(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	assert.True(t, e.r.Stat().LastMessage.IsZero())
	a := alive.NewAlive()
	a.Stop()
	e.r.Loop(a)
	assert.Empty(t, e.sleeper.Calls())
}

// Bytes arriving while message is on screen or during debounce are stale and dropped on clear.
func TestRunnerDrainStaleInput(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.sleeper.SetHook(func(d time.Duration) {
		switch d {
		case presenter.DefaultDwell:
			e.source.Push("late\n")
		case DefaultDebounce:
			e.source.Push("bounce\n")
		}
	})
	e.source.Push("World\n")
	e.r.Tick()
	assert.Equal(t, "World", e.r.Session().Message())
	assert.False(t, e.indicator.Value())
	assert.Equal(t, "late\n", e.source.Pending())

	e.button.Press()
	e.r.Tick()
	e.sleeper.SetHook(nil)
	e.r.Tick()
	assert.Equal(t, StateAwaitingData, e.r.Session().State())
	assert.Equal(t, uint64(len("late\nbounce\n")), e.r.Stat().Drained)

	e.sleeper.Reset()
	e.source.Push("next\n")
	e.r.Tick()
	assert.Equal(t, "next", e.r.Session().Message())
	assert.Equal(t, []time.Duration{presenter.DefaultDwell}, e.sleeper.Calls())
}

func TestRunnerPressBeforeMessage(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.button.Press()
	e.r.Tick()
	e.source.Push("Hello\n")
	e.r.Tick()
	require.Equal(t, StateDisplayingData, e.r.Session().State())
	e.r.Tick()
	assert.Equal(t, StateDisplayingData, e.r.Session().State(), "early press must not acknowledge")
	assert.Equal(t, uint32(0), e.r.Stat().Session.Acks)

	e.button.Press()
	e.r.Tick()
	assert.Equal(t, StateClearingDisplay, e.r.Session().State())
}

// Loop on its own goroutine while another reads state and counters, run with -race.
func TestRunnerConcurrentStat(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.sleeper.SetHook(func(time.Duration) { time.Sleep(time.Millisecond) })
	a := alive.NewAlive()
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.r.Loop(a)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for e.r.Stat().Session.Clears < 3 && time.Now().Before(deadline) {
		switch e.r.Session().State() {
		case StateAwaitingData:
			if e.source.Pending() == "" {
				e.source.Push("Hello\n")
			}
		case StateDisplayingData:
			e.button.Press()
		}
		_ = e.r.Session().String()
		time.Sleep(time.Millisecond)
	}
	a.Stop()
	<-done
	st := e.r.Stat()
	assert.GreaterOrEqual(t, st.Session.Clears, uint32(3))
	assert.GreaterOrEqual(t, st.Session.Messages, st.Session.Acks)
}
