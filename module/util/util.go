package util

import (
	"context"

	"github.com/AElfProject/AElf-sub008/module"
)

// AllReady calls Ready on every component and returns a channel that is closed
// once all of them are ready.
func AllReady(components ...module.ReadyDoneAware) <-chan struct{} {
	channels := make([]<-chan struct{}, 0, len(components))
	for _, c := range components {
		channels = append(channels, c.Ready())
	}
	return AllClosed(channels...)
}

// AllDone calls Done on every component and returns a channel that is closed
// once all of them are done.
func AllDone(components ...module.ReadyDoneAware) <-chan struct{} {
	channels := make([]<-chan struct{}, 0, len(components))
	for _, c := range components {
		channels = append(channels, c.Done())
	}
	return AllClosed(channels...)
}

// AllClosed returns a channel that is closed when all input channels are closed.
func AllClosed(channels ...<-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for _, ch := range channels {
			<-ch
		}
		close(done)
	}()
	return done
}

// WaitClosed waits for the channel to be closed or the context to be cancelled.
// A channel closed at the same time as the context wins, so that a completed
// signal is never reported as cancellation.
func WaitClosed(ctx context.Context, ch <-chan struct{}) error {
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		if CheckClosed(ch) {
			return nil
		}
		return ctx.Err()
	}
}

// CheckClosed returns true if the channel was closed or signalled.
func CheckClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
