package semaphore

import "context"

// Semaphore bounds the number of concurrently running operations.
type Semaphore chan struct{}

func New(concurrency int) Semaphore {
	return make(chan struct{}, concurrency)
}

func (s Semaphore) Acquire() {
	s <- struct{}{}
}

// AcquireContext waits for a free slot until ctx is done.
func (s Semaphore) AcquireContext(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s Semaphore) Release() {
	<-s
}
