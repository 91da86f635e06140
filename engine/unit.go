package engine

import (
	"context"
	"sync"
)

// Unit tracks the goroutines of an engine so that shutdown can wait for them.
// Once shutdown began, no new work is admitted.
type Unit struct {
	admitLock sync.Mutex
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewUnit() *Unit {
	ctx, cancel := context.WithCancel(context.Background())
	return &Unit{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Launch runs f in a new goroutine unless shutdown began. Done does not close
// before f returned.
func (u *Unit) Launch(f func()) {
	u.admitLock.Lock()
	if u.ctx.Err() != nil {
		u.admitLock.Unlock()
		return
	}
	u.wg.Add(1)
	u.admitLock.Unlock()

	go func() {
		defer u.wg.Done()
		f()
	}()
}

// Ready runs the checks in order and closes the returned channel afterwards.
func (u *Unit) Ready(checks ...func()) <-chan struct{} {
	ready := make(chan struct{})
	go func() {
		for _, check := range checks {
			check()
		}
		close(ready)
	}()
	return ready
}

// Ctx is cancelled when shutdown begins.
func (u *Unit) Ctx() context.Context {
	return u.ctx
}

// Quit is closed when shutdown begins.
func (u *Unit) Quit() <-chan struct{} {
	return u.ctx.Done()
}

// Done begins shutdown, runs the actions and waits for all launched
// goroutines. The returned channel is closed once all of them returned.
func (u *Unit) Done(actions ...func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		u.admitLock.Lock()
		u.cancel()
		u.admitLock.Unlock()
		for _, action := range actions {
			action()
		}
		u.wg.Wait()
		close(done)
	}()
	return done
}
