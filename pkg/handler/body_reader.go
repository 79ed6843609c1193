package handler

import (
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// bodyReader wraps the request body of a PATCH request. Read errors are not
// passed on to the session store. Instead they are stored and the reader
// reports io.EOF, so the store persists whatever arrived and the handler can
// decide how to respond using hasError afterwards.
type bodyReader struct {
	// bytesCounter is the first field to keep it 64-bit aligned on 32-bit builds.
	bytesCounter int64
	ctx          *httpContext
	reader       io.ReadCloser

	// lock protects concurrent access to err.
	lock sync.RWMutex
	err  error
}

func newBodyReader(c *httpContext, maxSize int64) *bodyReader {
	return &bodyReader{
		ctx:    c,
		reader: http.MaxBytesReader(c.res, c.req.Body, maxSize),
	}
}

func (r *bodyReader) Read(b []byte) (int, error) {
	r.lock.RLock()
	hasErrored := r.err != nil
	r.lock.RUnlock()
	if hasErrored {
		return 0, io.EOF
	}

	n, err := r.reader.Read(b)
	atomic.AddInt64(&r.bytesCounter, int64(n))
	if err == nil {
		return n, nil
	}

	// io.EOF means that the request body was fully read.
	// http.ErrBodyReadAfterClose means that closeWithError already closed the
	// body and recorded the reason.
	if err == io.EOF || err == http.ErrBodyReadAfterClose {
		return n, io.EOF
	}

	switch {
	case err == io.ErrClosedPipe || err == io.ErrUnexpectedEOF:
		// The client stopped sending before the announced length was reached.
		err = ErrUnexpectedEOF
	case strings.HasSuffix(err.Error(), "read: connection reset by peer"):
		// Drop the local address from the message.
		err = ErrConnectionReset
	case errors.Is(err, os.ErrDeadlineExceeded):
		err = ErrReadTimeout
	default:
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			err = ErrReadTimeout
		}

		maxBytesErr := &http.MaxBytesError{}
		if errors.As(err, &maxBytesErr) {
			err = ErrSizeExceeded
		}
	}

	// An error set by closeWithError takes precedence.
	r.lock.Lock()
	if r.err == nil {
		r.err = err
	}
	r.lock.Unlock()

	return n, io.EOF
}

func (r *bodyReader) hasError() error {
	r.lock.RLock()
	err := r.err
	r.lock.RUnlock()

	if err == io.EOF {
		return nil
	}

	return err
}

func (r *bodyReader) bytesRead() int64 {
	return atomic.LoadInt64(&r.bytesCounter)
}

func (r *bodyReader) closeWithError(err error) {
	r.lock.Lock()
	r.err = err
	r.lock.Unlock()

	// SetReadDeadline with the current time causes concurrent reads to the body to time out,
	// so the body will be closed sooner with less delay.
	if err := r.ctx.resC.SetReadDeadline(time.Now()); err != nil {
		r.ctx.log.Warn("NetworkTimeoutError", "error", err)
	}

	r.reader.Close()
}
