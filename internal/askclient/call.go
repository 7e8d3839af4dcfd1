package askclient

import (
	"context"
	"sync"

	"askchat/internal/logging"
)

// AskFunc performs one blocking request.
type AskFunc func(ctx context.Context, req Request) (*Response, error)

// Call is a single in-flight request. It settles exactly once, with either
// a Response or an error, and can be cancelled before it settles.
type Call struct {
	Request Request

	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once

	resp *Response
	err  error
}

// Start runs fn for req on its own goroutine and returns the pending Call.
// Cancelling ctx or calling Cancel aborts fn through its context.
func Start(ctx context.Context, req Request, fn AskFunc) *Call {
	ctx, cancel := context.WithCancel(ctx)
	call := &Call{
		Request: req,
		done:    make(chan struct{}),
		cancel:  cancel,
	}

	go func() {
		defer cancel()
		resp, err := fn(ctx, req)
		if err != nil && ctx.Err() == context.Canceled {
			logging.API("request cancelled: mode=%q", req.Mode)
			err = ErrCancelled
		}
		call.settle(resp, err)
	}()

	return call
}

// Go starts Ask for req and returns immediately.
func (c *Client) Go(ctx context.Context, req Request) *Call {
	return Start(ctx, req, c.Ask)
}

func (c *Call) settle(resp *Response, err error) {
	c.once.Do(func() {
		if err != nil {
			resp = nil
		}
		c.resp, c.err = resp, err
		close(c.done)
	})
}

// Done is closed once the call has settled.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Result blocks until the call settles.
func (c *Call) Result() (*Response, error) {
	<-c.done
	return c.resp, c.err
}

// Cancel aborts the request. It is a no-op once the call has settled.
func (c *Call) Cancel() {
	c.cancel()
}

// Settled reports whether Result would return without blocking.
func (c *Call) Settled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
