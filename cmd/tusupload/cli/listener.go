package cli

import (
	"errors"
	"net"
	"os"
	"sync/atomic"
	"time"
)

// Listener wraps a net.Listener, and gives a place to store the timeout
// parameters. On Accept, it will wrap the net.Conn with our own Conn for us.
// Based on https://gist.github.com/jbardin/9663312
// Thanks! <3
type Listener struct {
	net.Listener
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (l *Listener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	// Set the timeout when the connection is accepted. They will
	// get updated after successful read and write operations.
	if err := setDeadline(c.SetReadDeadline, l.ReadTimeout); err != nil {
		c.Close()
		return nil, err
	}
	if err := setDeadline(c.SetWriteDeadline, l.WriteTimeout); err != nil {
		c.Close()
		return nil, err
	}

	MetricsOpenConnections.Inc()

	return &Conn{
		Conn:         c,
		ReadTimeout:  l.ReadTimeout,
		WriteTimeout: l.WriteTimeout,
	}, nil
}

func setDeadline(set func(time.Time) error, timeout time.Duration) error {
	if timeout > 0 {
		return set(time.Now().Add(timeout))
	}
	return set(time.Time{})
}

// Conn wraps a net.Conn, and sets a deadline for every read
// and write operation.
type Conn struct {
	net.Conn
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// closed is set once the open connections gauge has been decremented for
	// this connection, so that closing twice is only counted once.
	closed atomic.Bool
}

func (c *Conn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	// If the read did not time out (i.e. no timeout error was returned),
	// we update the read deadline to allow for the next operation.
	if !isTimeoutError(err) && c.ReadTimeout > 0 {
		err2 := c.Conn.SetReadDeadline(time.Now().Add(c.ReadTimeout))
		if err == nil {
			err = err2
		}
	}

	// The response to an upload is only written once its body has been
	// received, which can take longer than the write timeout.
	if n > 0 && c.WriteTimeout > 0 {
		err2 := c.Conn.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
		if err == nil {
			err = err2
		}
	}

	return n, err
}

func (c *Conn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	// If the write did not time out (i.e. no timeout error was returned),
	// we update the write deadline to allow for the next operation.
	if !isTimeoutError(err) && c.WriteTimeout > 0 {
		err2 := c.Conn.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
		if err == nil {
			err = err2
		}
	}

	return n, err
}

func (c *Conn) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		MetricsOpenConnections.Dec()
	}

	return c.Conn.Close()
}

func NewListener(addr string, readTimeout, writeTimeout time.Duration) (net.Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Listener{
		Listener:     l,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}, nil
}

// Binds to a UNIX socket. If the file already exists, try to remove it before
// binding again. This logic is borrowed from Gunicorn
// (see https://github.com/benoitc/gunicorn/blob/a8963ef1a5a76f3df75ce477b55fe0297e3b617d/gunicorn/sock.py#L106)
func NewUnixListener(path string, readTimeout, writeTimeout time.Duration) (net.Listener, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else {
		if stat.Mode()&os.ModeSocket == 0 {
			return nil, errors.New("specified path is not a socket")
		}
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}

	return &Listener{
		Listener:     l,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}, nil
}

// isTimeoutError checks if err is a network timeout error.
func isTimeoutError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
