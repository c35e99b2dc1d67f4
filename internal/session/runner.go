package session

import (
	"sync/atomic"
	"time"

	"github.com/temoto/alive/v2"
	"github.com/temoto/linepanel/hardware/pin"
	"github.com/temoto/linepanel/hardware/uart"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/helpers/atomic_clock"
	"github.com/temoto/linepanel/log2"
)

type Displayer interface {
	ShowMessage(lines []string)
	ShowIdle()
}

// Reporter receives state changes and messages, see internal/tele.
type Reporter interface {
	ReportState(state string)
	ReportMessage(msg string)
}

type noopReporter struct{}

func (noopReporter) ReportState(string)   {}
func (noopReporter) ReportMessage(string) {}

type Deps struct {
	Source    uart.Source
	Button    pin.Input
	Indicator pin.Output
	Display   Displayer
	Sleeper   helpers.Sleeper
	Reporter  Reporter
}

type RunnerStat struct {
	Session     Stat
	Drained     uint64
	ReadErrors  uint64
	LastMessage time.Time
}

// Runner is the only goroutine touching capabilities and mutating Session.
type Runner struct {
	log        *log2.Log
	s          *Session
	d          Deps
	clearch    chan struct{}
	drained    uint64
	readErrors uint64
	lastMsg    atomic_clock.Clock

	XXX_testHook func(State)
}

func NewRunner(s *Session, d Deps, log *log2.Log) *Runner {
	if d.Sleeper == nil {
		d.Sleeper = helpers.RealSleeper{}
	}
	if d.Reporter == nil {
		d.Reporter = noopReporter{}
	}
	return &Runner{
		log:     log,
		s:       s,
		d:       d,
		clearch: make(chan struct{}, 1),
	}
}

func (self *Runner) Session() *Session { return self.s }

// RequestClear is safe from any goroutine, applied on next tick.
func (self *Runner) RequestClear() {
	select {
	case self.clearch <- struct{}{}:
	default:
	}
}

func (self *Runner) Stat() RunnerStat {
	return RunnerStat{
		Session:     self.s.Stat(),
		Drained:     atomic.LoadUint64(&self.drained),
		ReadErrors:  atomic.LoadUint64(&self.readErrors),
		LastMessage: self.lastMsg.Time(),
	}
}

// Tick runs one iteration without the trailing tick sleep.
func (self *Runner) Tick() {
	before := self.s.State()
	select {
	case <-self.clearch:
		if RequestClear(self.s) {
			self.log.Infof("session clear requested state=%s", before)
		}
	default:
	}

	switch self.s.State() {
	case StateAwaitingData:
		// stop feeding on completion, rest stays in transport until drained
		for self.s.State() == StateAwaitingData && self.d.Source.Readable() {
			b, err := self.d.Source.ReadByte()
			if err != nil {
				atomic.AddUint64(&self.readErrors, 1)
				self.log.Errorf("session serial read err=%v", err)
				break
			}
			effects := Transition(self.s, ByteEvent(b))
			if self.s.State() == StateDisplayingData {
				msg := self.s.Message()
				self.lastMsg.SetNow()
				self.log.Infof("message received: %s", msg)
				self.d.Reporter.ReportMessage(msg)
			}
			self.apply(effects)
			if self.s.State() == StateDisplayingData {
				// taps while waiting or during dwell must not acknowledge this message
				if l, ok := self.d.Button.(pin.Latcher); ok {
					l.Reset()
				}
			}
		}

	case StateDisplayingData:
		pressed, err := self.d.Button.Read()
		if err != nil {
			atomic.AddUint64(&self.readErrors, 1)
			self.log.Errorf("session button read err=%v", err)
			break
		}
		self.apply(Transition(self.s, ButtonEvent(pressed)))

	case StateClearingDisplay:
		self.apply(Transition(self.s, TickEvent()))
	}

	if after := self.s.State(); after != before {
		self.log.Debugf("session %s -> %s", before, after)
		self.d.Reporter.ReportState(after.String())
		if self.XXX_testHook != nil {
			self.XXX_testHook(after)
		}
	}
}

// Loop ticks until a is stopped. Effects in progress are not interrupted.
func (self *Runner) Loop(a *alive.Alive) {
	if !a.Add(1) {
		return
	}
	defer a.Done()
	tick := self.s.Config().Tick
	self.d.Reporter.ReportState(self.s.State().String())
	for a.IsRunning() {
		self.Tick()
		self.d.Sleeper.Sleep(tick)
	}
	st := self.Stat()
	self.log.Infof("session loop end messages=%d overflows=%d acks=%d drained=%d read_errors=%d",
		st.Session.Messages, st.Session.Overflows, st.Session.Acks, st.Drained, st.ReadErrors)
}

func (self *Runner) apply(effects []Effect) {
	for _, e := range effects {
		self.log.Debugf("session effect %s", e)
		switch e.Kind {
		case EffectShowMessage:
			self.d.Display.ShowMessage(e.Lines)
		case EffectShowIdle:
			self.d.Display.ShowIdle()
		case EffectSetIndicator:
			if err := self.d.Indicator.Set(e.On); err != nil {
				self.log.Errorf("session indicator set=%t err=%v", e.On, err)
			}
		case EffectDelay:
			self.d.Sleeper.Sleep(e.Delay)
		case EffectDrainInput:
			self.drain()
		}
	}
}

func (self *Runner) drain() {
	n := 0
	for self.d.Source.Readable() {
		if _, err := self.d.Source.ReadByte(); err != nil {
			atomic.AddUint64(&self.readErrors, 1)
			self.log.Errorf("session drain err=%v", err)
			break
		}
		n++
	}
	if n > 0 {
		atomic.AddUint64(&self.drained, uint64(n))
		self.log.Debugf("session drained bytes=%d", n)
	}
}
