package irrecoverable

import (
	"context"
	"fmt"
	"runtime"
)

// Signaler forwards irrecoverable errors to whoever supervises a component.
type Signaler struct {
	errors chan<- error
}

// NewSignaler returns a signaler that writes thrown errors to the channel.
func NewSignaler(errors chan<- error) *Signaler {
	return &Signaler{errors: errors}
}

// Throw sends the error and terminates the calling goroutine. It is used in
// place of panic by goroutines that are connected to a supervisor.
func (s *Signaler) Throw(err error) {
	s.errors <- err
	runtime.Goexit()
}

// SignalerContext is a context.Context that can report irrecoverable errors.
// It can only be constructed with WithSignaler.
type SignalerContext interface {
	context.Context
	Throw(err error)
	sealed()
}

type signalerCtx struct {
	context.Context
	signaler *Signaler
}

func (sc signalerCtx) sealed() {}

func (sc signalerCtx) Throw(err error) {
	sc.signaler.Throw(err)
}

// WithSignaler derives a SignalerContext from ctx.
func WithSignaler(ctx context.Context, sig *Signaler) SignalerContext {
	return signalerCtx{Context: ctx, signaler: sig}
}

// Throw reports err through ctx if it is a SignalerContext and panics
// otherwise.
func Throw(ctx context.Context, err error) {
	if sc, ok := ctx.(SignalerContext); ok {
		sc.Throw(err)
	}
	panic(fmt.Sprintf("irrecoverable error without signaler: %v", err))
}
