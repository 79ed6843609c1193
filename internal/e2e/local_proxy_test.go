package e2e_test

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// localProxy forwards TCP connections to an upstream address and can degrade
// the upstream direction (client to server) of every new connection.
type localProxy struct {
	Listen   string
	upstream string
	listener net.Listener

	mu     sync.RWMutex
	config localProxyConfig

	connMu      sync.Mutex
	connections map[net.Conn]struct{}

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

type localProxyConfig struct {
	// upstreamRateBytesPerSecond limits the bandwidth. 0 means unlimited.
	upstreamRateBytesPerSecond int64
	// upstreamLimitBytes closes the connection once this many bytes have
	// been forwarded. 0 means unlimited.
	upstreamLimitBytes int64
	// upstreamStallBytes stops forwarding, without closing the connection,
	// once this many bytes have been forwarded. 0 means never.
	upstreamStallBytes int64
}

var errUpstreamLimitReached = errors.New("upstream limit reached")

func newLocalProxy(upstream string) (*localProxy, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	proxy := &localProxy{
		Listen:      ln.Addr().String(),
		upstream:    upstream,
		listener:    ln,
		closed:      make(chan struct{}),
		connections: make(map[net.Conn]struct{}),
	}

	proxy.wg.Add(1)
	go proxy.serve()

	return proxy, nil
}

// Degrade changes the behaviour for connections accepted afterwards.
// Supported kinds are "bandwidth" (KB/s), "limit_data" and "stall" (bytes).
func (proxy *localProxy) Degrade(kind string, value int64) error {
	if value <= 0 {
		return fmt.Errorf("%s requires a positive value", kind)
	}

	proxy.mu.Lock()
	defer proxy.mu.Unlock()

	switch kind {
	case "bandwidth":
		proxy.config.upstreamRateBytesPerSecond = value * 1024
	case "limit_data":
		proxy.config.upstreamLimitBytes = value
	case "stall":
		proxy.config.upstreamStallBytes = value
	default:
		return fmt.Errorf("unsupported degradation %q", kind)
	}

	return nil
}

func (proxy *localProxy) Close() error {
	var closeErr error

	proxy.closeOnce.Do(func() {
		close(proxy.closed)
		closeErr = proxy.listener.Close()

		proxy.connMu.Lock()
		for conn := range proxy.connections {
			_ = conn.Close()
		}
		proxy.connMu.Unlock()

		proxy.wg.Wait()
	})

	if errors.Is(closeErr, net.ErrClosed) {
		return nil
	}
	return closeErr
}

func (proxy *localProxy) serve() {
	defer proxy.wg.Done()

	for {
		clientConn, err := proxy.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-proxy.closed:
				return
			default:
			}

			continue
		}

		proxy.trackConnection(clientConn)
		proxy.wg.Add(1)
		go proxy.handleConnection(clientConn)
	}
}

func (proxy *localProxy) handleConnection(clientConn net.Conn) {
	defer proxy.wg.Done()
	defer proxy.untrackConnection(clientConn)

	upstreamConn, err := net.Dial("tcp", proxy.upstream)
	if err != nil {
		_ = clientConn.Close()
		return
	}

	proxy.trackConnection(upstreamConn)
	defer proxy.untrackConnection(upstreamConn)

	config := proxy.currentConfig()
	errCh := make(chan error, 2)

	go func() {
		errCh <- proxy.copyUpstream(upstreamConn, clientConn, config)
	}()

	go func() {
		_, err := io.Copy(clientConn, upstreamConn)
		errCh <- err
	}()

	<-errCh

	_ = clientConn.Close()
	_ = upstreamConn.Close()
	<-errCh
}

func (proxy *localProxy) copyUpstream(dst net.Conn, src net.Conn, config localProxyConfig) error {
	const maxBufferSize = 32 * 1024
	bufferSize := maxBufferSize
	if config.upstreamRateBytesPerSecond > 0 {
		// About 50ms worth of data, so that there are no large bursts.
		bufferSize = int(min(max(config.upstreamRateBytesPerSecond/20, 1), maxBufferSize))
	}

	budget := config.upstreamLimitBytes
	if config.upstreamStallBytes > 0 {
		budget = config.upstreamStallBytes
	}

	buffer := make([]byte, bufferSize)
	sent := int64(0)
	start := time.Now()

	for {
		readLimit := len(buffer)
		if budget > 0 {
			remaining := budget - sent
			if remaining <= 0 {
				return proxy.budgetExhausted(config)
			}
			readLimit = int(min(int64(readLimit), remaining))
		}

		readLen, readErr := src.Read(buffer[:readLimit])
		if readLen > 0 {
			if config.upstreamRateBytesPerSecond > 0 {
				expectedElapsed := time.Duration(sent+int64(readLen)) * time.Second / time.Duration(config.upstreamRateBytesPerSecond)
				if sleepFor := time.Until(start.Add(expectedElapsed)); sleepFor > 0 {
					time.Sleep(sleepFor)
				}
			}

			if _, err := dst.Write(buffer[:readLen]); err != nil {
				return err
			}
			sent += int64(readLen)
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

// budgetExhausted either closes the connection or keeps it open silently
// until the proxy is closed.
func (proxy *localProxy) budgetExhausted(config localProxyConfig) error {
	if config.upstreamStallBytes > 0 {
		<-proxy.closed
		return nil
	}
	return errUpstreamLimitReached
}

func (proxy *localProxy) currentConfig() localProxyConfig {
	proxy.mu.RLock()
	defer proxy.mu.RUnlock()

	return proxy.config
}

func (proxy *localProxy) trackConnection(conn net.Conn) {
	proxy.connMu.Lock()
	defer proxy.connMu.Unlock()

	proxy.connections[conn] = struct{}{}
}

func (proxy *localProxy) untrackConnection(conn net.Conn) {
	proxy.connMu.Lock()
	defer proxy.connMu.Unlock()

	delete(proxy.connections, conn)
	_ = conn.Close()
}
