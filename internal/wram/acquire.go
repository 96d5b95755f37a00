package wram

import (
	"errors"
	"fmt"
	"io"
)

// chunkSize caps a single read from the transport.
const chunkSize = 4096

// ErrTransportClosed is returned when the stream ends before a full snapshot arrives.
var ErrTransportClosed = errors.New("transport closed")

// TransportError describes a failed acquisition. It is fatal to the poll loop.
type TransportError struct {
	Op       string
	Received int
	Expected int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Expected > 0 {
		return fmt.Sprintf("wram %s: received %d of %d bytes: %v", e.Op, e.Received, e.Expected, e.Err)
	}
	return fmt.Sprintf("wram %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Acquire sends the request byte and blocks until exactly n bytes have been read.
// It never returns a partial buffer.
func Acquire(rw io.ReadWriter, request byte, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid snapshot size %d", n)
	}

	if _, err := rw.Write([]byte{request}); err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}

	buf := make([]byte, n)
	received := 0
	for received < n {
		end := min(received+chunkSize, n)
		read, err := rw.Read(buf[received:end])
		received += read
		if received >= n {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrTransportClosed
			}
			return nil, &TransportError{Op: "read", Received: received, Expected: n, Err: err}
		}
		if read == 0 {
			return nil, &TransportError{Op: "read", Received: received, Expected: n, Err: ErrTransportClosed}
		}
	}

	return buf, nil
}
