// Package tele reports session state and received messages over MQTT
// and accepts remote commands.
//
// Topics, relative to prefix:
//   state    retained, current session state, "Disconnected" as last will
//   message  every received message
//   command  input: "clear", "report"
//   response command results
//   error    errors logged by application
package tele

import (
	"context"
	"expvar"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/linepanel/log2"
)

const (
	StateDisconnected = "Disconnected"
	defaultQueueSize  = 16
)

type Teler interface {
	ReportState(state string)
	ReportMessage(msg string)
	ReportError(err error)
	Close()
}

type Noop struct{}

var _ Teler = Noop{} // compile-time interface test

func (Noop) ReportState(string)   {}
func (Noop) ReportMessage(string) {}
func (Noop) ReportError(error)    {}
func (Noop) Close()               {}

type Stat struct {
	Sent     expvar.Int
	Failed   expvar.Int
	Dropped  expvar.Int
	Commands expvar.Int
}

type kind uint8

const (
	kindState kind = iota + 1
	kindMessage
	kindResponse
	kindError
)

type outgoing struct {
	kind    kind
	payload []byte
}

// Tele contract:
// - New fails only with invalid config, network issues ignored
// - Report* never block, messages over queue size are dropped
// - Close waits for worker to finish current send
type Tele struct {
	config    Config
	log       *log2.Log
	transport Transporter
	handler   CommandHandler
	alive     *alive.Alive
	q         chan outgoing
	mu        sync.Mutex
	state     string
	Stat      Stat
}

var _ Teler = &Tele{} // compile-time interface test

// New returns Noop when disabled.
func New(ctx context.Context, log *log2.Log, c Config, handler CommandHandler) (Teler, error) {
	if !c.Enabled {
		log.Infof("tele disabled")
		return Noop{}, nil
	}
	t, err := NewWithTransporter(ctx, log, c, handler, &transportMqtt{})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func NewWithTransporter(ctx context.Context, log *log2.Log, c Config, handler CommandHandler, trans Transporter) (*Tele, error) {
	level := log.Level()
	if c.LogDebug {
		level = log2.LDebug
	}
	// own errors go to log only, reporting them would queue more failing sends
	log = log.Clone(level)
	log.SetErrorFunc(nil)
	size := c.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	self := &Tele{
		config:    c,
		log:       log,
		transport: trans,
		handler:   handler,
		alive:     alive.NewAlive(),
		q:         make(chan outgoing, size),
	}
	if err := trans.Init(ctx, log, c, self.onCommandMessage, []byte(StateDisconnected)); err != nil {
		return nil, errors.Annotate(err, "tele transport")
	}
	self.alive.Add(1)
	go self.worker()
	return self, nil
}

func (self *Tele) ReportState(state string) {
	self.mu.Lock()
	self.state = state
	self.mu.Unlock()
	self.push(kindState, state)
}

func (self *Tele) ReportMessage(msg string) { self.push(kindMessage, msg) }

func (self *Tele) ReportError(err error) {
	if err != nil {
		self.push(kindError, err.Error())
	}
}

func (self *Tele) State() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.state
}

func (self *Tele) Close() {
	self.alive.Stop()
	self.alive.Wait()
	self.transport.Close()
}

func (self *Tele) push(k kind, s string) {
	select {
	case self.q <- outgoing{kind: k, payload: []byte(s)}:
	default:
		self.Stat.Dropped.Add(1)
		self.log.Debugf("tele queue full, dropped kind=%d", k)
	}
}

func (self *Tele) worker() {
	defer self.alive.Done()
	stopch := self.alive.StopChan()
	for {
		select {
		case o := <-self.q:
			self.send(o)
		case <-stopch:
			return
		}
	}
}

func (self *Tele) send(o outgoing) {
	var ok bool
	switch o.kind {
	case kindState:
		ok = self.transport.SendState(o.payload)
	case kindMessage:
		ok = self.transport.SendMessage(o.payload)
	case kindResponse:
		ok = self.transport.SendCommandResponse(o.payload)
	case kindError:
		ok = self.transport.SendError(o.payload)
	}
	if ok {
		self.Stat.Sent.Add(1)
	} else {
		self.Stat.Failed.Add(1)
		self.log.Debugf("tele send failed kind=%d payload=%s", o.kind, o.payload)
	}
}
