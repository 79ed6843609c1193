package handler

import (
	"sync"
	"sync/atomic"
)

// Metrics provides numbers about the usage of the upload handler. Since these may
// be accessed from multiple goroutines, it is necessary to read and modify them
// atomically using the functions exposed in the sync/atomic package, such as
// atomic.LoadUint64. In addition the maps must not be modified to prevent data
// races.
type Metrics struct {
	// RequestTotal counts the number of incoming requests per method
	RequestsTotal map[string]*uint64
	// ErrorsTotal counts the number of returned errors by their code
	ErrorsTotal       *ErrorsTotalMap
	BytesReceived     *uint64
	SessionsCreated   *uint64
	SessionsFinalized *uint64
	SessionsExpired   *uint64
}

// incRequestsTotal increases the counter for this request method atomically by
// one. The method must be one of HEAD, POST, PATCH, OPTIONS.
func (m Metrics) incRequestsTotal(method string) {
	if ptr, ok := m.RequestsTotal[method]; ok {
		atomic.AddUint64(ptr, 1)
	}
}

// incErrorsTotal increases the counter for this error atomically by one.
func (m Metrics) incErrorsTotal(err Error) {
	ptr := m.ErrorsTotal.retrievePointerFor(err)
	atomic.AddUint64(ptr, 1)
}

// incBytesReceived increases the number of received bytes atomically be the
// specified number.
func (m Metrics) incBytesReceived(delta uint64) {
	atomic.AddUint64(m.BytesReceived, delta)
}

func (m Metrics) incSessionsCreated() {
	atomic.AddUint64(m.SessionsCreated, 1)
}

func (m Metrics) incSessionsFinalized() {
	atomic.AddUint64(m.SessionsFinalized, 1)
}

// IncSessionsExpired increases the counter for swept sessions by n. Sweeping
// happens outside of the request handling, so the session store reports it
// through this method.
func (m Metrics) IncSessionsExpired(n int) {
	if n <= 0 {
		return
	}
	atomic.AddUint64(m.SessionsExpired, uint64(n))
}

func newMetrics() Metrics {
	return Metrics{
		RequestsTotal: map[string]*uint64{
			"HEAD":    new(uint64),
			"POST":    new(uint64),
			"PATCH":   new(uint64),
			"OPTIONS": new(uint64),
		},
		ErrorsTotal:       newErrorsTotalMap(),
		BytesReceived:     new(uint64),
		SessionsCreated:   new(uint64),
		SessionsFinalized: new(uint64),
		SessionsExpired:   new(uint64),
	}
}

// ErrorsTotalMap stores the counter for the different errors.
type ErrorsTotalMap struct {
	lock    sync.RWMutex
	counter map[SimpleError]*uint64
}

// SimpleError is the key under which errors are counted.
type SimpleError struct {
	ErrorCode  string
	StatusCode int
}

func newErrorsTotalMap() *ErrorsTotalMap {
	m := make(map[SimpleError]*uint64, 20)
	return &ErrorsTotalMap{
		counter: m,
	}
}

// retrievePointerFor returns (after creating it if necessary) the pointer to
// the counter for the error.
func (e *ErrorsTotalMap) retrievePointerFor(err Error) *uint64 {
	serr := SimpleError{
		ErrorCode:  err.ErrorCode,
		StatusCode: err.HTTPResponse.StatusCode,
	}

	e.lock.RLock()
	ptr, ok := e.counter[serr]
	e.lock.RUnlock()
	if ok {
		return ptr
	}

	// For pointer creation, a write lock is required
	e.lock.Lock()
	// We ensure that the ptr wasn't created in the meantime
	if ptr, ok = e.counter[serr]; !ok {
		ptr = new(uint64)
		e.counter[serr] = ptr
	}
	e.lock.Unlock()
	return ptr
}

// Load retrieves the map of the counter pointers atomically
func (e *ErrorsTotalMap) Load() map[SimpleError]*uint64 {
	m := make(map[SimpleError]*uint64, len(e.counter))
	e.lock.RLock()
	for err, ptr := range e.counter {
		m[err] = ptr
	}
	e.lock.RUnlock()

	return m
}
