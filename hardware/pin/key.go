package pin

import (
	"io"
	"os"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/inputevent-go"
	"github.com/temoto/linepanel/log2"
)

// KeyInput turns linux input event key into polled Input.
// Press between two polls is latched, so short taps are not lost.
type KeyInput struct {
	log     *log2.Log
	f       io.ReadCloser
	key     uint16
	mu      sync.Mutex
	down    bool
	latched bool
	err     error
	done    chan struct{}
}

func OpenKeyInput(device string, key uint16, log *log2.Log) (*KeyInput, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return NewKeyInput(f, key, log), nil
}

// NewKeyInput starts reader goroutine which owns r.
func NewKeyInput(r io.ReadCloser, key uint16, log *log2.Log) *KeyInput {
	self := &KeyInput{
		log:  log,
		f:    r,
		key:  key,
		done: make(chan struct{}),
	}
	go self.readLoop()
	return self
}

func (self *KeyInput) readLoop() {
	defer close(self.done)
	for {
		ie, err := inputevent.ReadOne(self.f)
		if err != nil {
			self.mu.Lock()
			self.err = err
			self.mu.Unlock()
			return
		}
		if ie.Type != inputevent.EV_KEY || ie.Code != self.key {
			continue
		}
		self.log.Debugf("input key=%d value=%d", ie.Code, ie.Value)
		self.mu.Lock()
		switch inputevent.KeyEventState(ie.Value) {
		case inputevent.KeyStateDown, inputevent.KeyStateHold:
			self.down = true
			self.latched = true
		case inputevent.KeyStateUp:
			self.down = false
		}
		self.mu.Unlock()
	}
}

func (self *KeyInput) Read() (bool, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	pressed := self.down || self.latched
	self.latched = false
	if self.err != nil && self.err != io.EOF {
		return pressed, errors.Annotate(self.err, "input event")
	}
	return pressed, nil
}

func (self *KeyInput) Reset() {
	self.mu.Lock()
	self.latched = false
	self.mu.Unlock()
}

func (self *KeyInput) Close() error {
	err := self.f.Close()
	<-self.done
	return err
}
