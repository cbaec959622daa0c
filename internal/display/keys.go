package display

import (
	"bufio"
	"io"
)

// WatchKeys reads r until key is seen, then requests a stop on flag. The
// returned channel is closed when the watcher exits (key seen, EOF or read
// error). A blocked read cannot be interrupted; close r to release it.
func WatchKeys(r io.Reader, key byte, flag *StopFlag) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		br := bufio.NewReader(r)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			if b == key {
				flag.Request()
				return
			}
		}
	}()
	return done
}
