package helpers

import (
	"expvar"
	"io"
	"sync"
)

// WriteAll repeats short writes until b is consumed or error.
func WriteAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// StatReader adds every read byte count to counter.
type StatReader struct {
	r       io.Reader
	counter *expvar.Int
}

var _ io.Reader = &StatReader{}

func NewStatReader(r io.Reader, counter *expvar.Int) *StatReader {
	return &StatReader{r: r, counter: counter}
}

func (self *StatReader) Read(p []byte) (int, error) {
	n, err := self.r.Read(p)
	self.counter.Add(int64(n))
	return n, err
}

func WithLock(l sync.Locker, f func()) {
	l.Lock()
	defer l.Unlock()
	f()
}
