// Package uart provides polled byte source over serial port.
package uart

import (
	"expvar"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/log2"
	serial "go.bug.st/serial"
)

// Source is non-blocking byte intake: ReadByte is only called after Readable.
type Source interface {
	Readable() bool
	ReadByte() (byte, error)
}

const DefaultBufferSize = 4096

var ErrEmpty = errors.New("uart buffer empty")

type Stat struct {
	Received expvar.Int
	Dropped  expvar.Int
}

// ReaderSource buffers bytes from blocking reader in background goroutine.
// When buffer is full, new bytes are dropped and counted.
type ReaderSource struct {
	log  *log2.Log
	r    io.ReadCloser
	mu   sync.Mutex
	buf  []byte
	max  int
	err  error
	done chan struct{}
	Stat Stat
}

var _ Source = &ReaderSource{} // compile-time interface test

func NewReaderSource(r io.ReadCloser, max int, log *log2.Log) *ReaderSource {
	if max <= 0 {
		max = DefaultBufferSize
	}
	self := &ReaderSource{
		log:  log,
		r:    r,
		buf:  make([]byte, 0, 256),
		max:  max,
		done: make(chan struct{}),
	}
	go self.readLoop()
	return self
}

func (self *ReaderSource) readLoop() {
	defer close(self.done)
	sr := helpers.NewStatReader(self.r, &self.Stat.Received)
	var chunk [256]byte
	for {
		n, err := sr.Read(chunk[:])
		if n > 0 {
			self.mu.Lock()
			free := self.max - len(self.buf)
			take := n
			if take > free {
				take = free
			}
			self.buf = append(self.buf, chunk[:take]...)
			self.mu.Unlock()
			if dropped := n - take; dropped > 0 {
				self.Stat.Dropped.Add(int64(dropped))
				self.log.Debugf("uart buffer full, dropped=%d", dropped)
			}
		}
		if err != nil {
			self.mu.Lock()
			self.err = err
			self.mu.Unlock()
			if err != io.EOF {
				self.log.Errorf("uart read err=%v", err)
			}
			return
		}
	}
}

func (self *ReaderSource) Readable() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.buf) > 0
}

func (self *ReaderSource) ReadByte() (byte, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if len(self.buf) == 0 {
		if self.err != nil {
			return 0, self.err
		}
		return 0, ErrEmpty
	}
	b := self.buf[0]
	self.buf = self.buf[:copy(self.buf, self.buf[1:])]
	return b, nil
}

// Buffered returns number of bytes waiting.
func (self *ReaderSource) Buffered() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.buf)
}

// Err is set after reader stopped, io.EOF on clean close.
func (self *ReaderSource) Err() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.err
}

func (self *ReaderSource) Close() error {
	err := self.r.Close()
	<-self.done
	return err
}

type Config struct {
	Device   string `hcl:"device"`
	Baudrate int    `hcl:"baudrate"`
	Buffer   int    `hcl:"buffer"`
}

const DefaultBaudrate = 115200

// Open serial port 8N1 and start buffering.
func Open(c Config, log *log2.Log) (*ReaderSource, error) {
	baud := c.Baudrate
	if baud == 0 {
		baud = DefaultBaudrate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(c.Device, mode)
	if err != nil {
		return nil, errors.Annotatef(err, "serial open device=%s baud=%d", c.Device, baud)
	}
	if err = port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, errors.Annotatef(err, "serial reset input device=%s", c.Device)
	}
	log.Infof("serial device=%s baud=%d", c.Device, baud)
	return NewReaderSource(port, c.Buffer, log), nil
}
