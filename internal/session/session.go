// Package session is the receive, display, acknowledge cycle.
// Transition mutates only Session and returns effects, Runner executes them.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/linepanel/internal/assembler"
	"github.com/temoto/linepanel/internal/textwrap"
)

type State uint32

const (
	StateAwaitingData State = iota
	StateDisplayingData
	StateClearingDisplay
)

func (s State) String() string {
	switch s {
	case StateAwaitingData:
		return "AwaitingData"
	case StateDisplayingData:
		return "DisplayingData"
	case StateClearingDisplay:
		return "ClearingDisplay"
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

type EventKind uint8

const (
	EventInvalid EventKind = iota
	EventByte
	EventButton
	EventTick
)

type Event struct {
	Kind    EventKind
	Byte    byte
	Pressed bool
}

func ByteEvent(b byte) Event   { return Event{Kind: EventByte, Byte: b} }
func ButtonEvent(p bool) Event { return Event{Kind: EventButton, Pressed: p} }
func TickEvent() Event         { return Event{Kind: EventTick} }

func (e Event) String() string {
	switch e.Kind {
	case EventByte:
		return fmt.Sprintf("byte(%02x)", e.Byte)
	case EventButton:
		return fmt.Sprintf("button(%t)", e.Pressed)
	case EventTick:
		return "tick"
	}
	return "invalid"
}

type EffectKind uint8

const (
	EffectShowMessage EffectKind = iota + 1
	EffectShowIdle
	EffectSetIndicator
	EffectDelay
	EffectDrainInput
)

type Effect struct {
	Kind  EffectKind
	Lines []string
	On    bool
	Delay time.Duration
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectShowMessage:
		return fmt.Sprintf("show-message%q", e.Lines)
	case EffectShowIdle:
		return "show-idle"
	case EffectSetIndicator:
		return fmt.Sprintf("indicator(%t)", e.On)
	case EffectDelay:
		return fmt.Sprintf("delay(%v)", e.Delay)
	case EffectDrainInput:
		return "drain-input"
	}
	return "effect?"
}

const (
	DefaultTrigger  = "Hello"
	DefaultDebounce = 200 * time.Millisecond
	DefaultTick     = 50 * time.Millisecond
)

type Config struct {
	Trigger    string
	Width      int
	BufferSize int
	Debounce   time.Duration
	Tick       time.Duration
}

func DefaultConfig() Config {
	return Config{
		Trigger:    DefaultTrigger,
		Width:      textwrap.DefaultWidth,
		BufferSize: assembler.DefaultCapacity,
		Debounce:   DefaultDebounce,
		Tick:       DefaultTick,
	}
}

type Stat struct {
	Messages  uint32
	Overflows uint32
	Acks      uint32
	Clears    uint32
}

// Session fields are guarded by mu: Runner mutates them while
// simulator and telemetry read state and counters.
type Session struct {
	mu        sync.Mutex
	c         Config
	state     State
	asm       *assembler.Assembler
	message   string
	indicator bool
	stat      Stat
}

func New(c Config) (*Session, error) {
	asm, err := assembler.New(c.BufferSize)
	if err != nil {
		return nil, errors.Annotate(err, "session")
	}
	if c.Debounce < 0 || c.Tick < 0 {
		return nil, errors.NotValidf("session debounce=%v tick=%v", c.Debounce, c.Tick)
	}
	return &Session{c: c, asm: asm}, nil
}

func (self *Session) Config() Config { return self.c }

func (self *Session) State() State {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.state
}

func (self *Session) Message() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.message
}

func (self *Session) Indicator() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.indicator
}

func (self *Session) Stat() Stat {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.stat
}

func (self *Session) Buffered() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.asm.Len()
}

func (self *Session) String() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return fmt.Sprintf("state=%s buffered=%d indicator=%t message=%q", self.state, self.asm.Len(), self.indicator, self.message)
}

// Transition applies one event. Pairs not listed below are no-op:
//   AwaitingData + byte: feed, on complete go DisplayingData
//   DisplayingData + button pressed: debounce, go ClearingDisplay
//   ClearingDisplay + tick: idle screen, reset, drain, go AwaitingData
func Transition(s *Session, ev Event) []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAwaitingData:
		if ev.Kind != EventByte {
			return nil
		}
		msg, complete := s.asm.Feed(ev.Byte)
		if !complete {
			return nil
		}
		if !assembler.IsTerminator(ev.Byte) {
			s.stat.Overflows++
		}
		s.stat.Messages++
		s.message = msg
		s.indicator = msg == s.c.Trigger
		s.state = StateDisplayingData
		return []Effect{
			{Kind: EffectShowMessage, Lines: textwrap.Wrap(msg, s.c.Width)},
			{Kind: EffectSetIndicator, On: s.indicator},
		}

	case StateDisplayingData:
		if ev.Kind != EventButton || !ev.Pressed {
			return nil
		}
		s.stat.Acks++
		s.state = StateClearingDisplay
		return []Effect{{Kind: EffectDelay, Delay: s.c.Debounce}}

	case StateClearingDisplay:
		if ev.Kind != EventTick {
			return nil
		}
		s.stat.Clears++
		s.asm.Reset()
		s.message = ""
		s.indicator = false
		s.state = StateAwaitingData
		return []Effect{
			{Kind: EffectShowIdle},
			{Kind: EffectSetIndicator, On: false},
			{Kind: EffectDrainInput},
		}
	}
	return nil
}

// RequestClear forces ClearingDisplay, reset happens on next tick.
// Returns false when already clearing.
func RequestClear(s *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClearingDisplay {
		return false
	}
	s.state = StateClearingDisplay
	return true
}
