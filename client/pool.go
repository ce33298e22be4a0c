package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/adamwoolhether/nylas/client/batch"
)

// Deferred is a prepared call that has not been sent. Invoking it sends
// the request and returns the open response of a successful status, or
// the classified error.
type Deferred func(ctx context.Context) (*http.Response, error)

// Result is one settled entry of a Pool. Exactly one of Data or the
// failure fields (Failed, Code, Message) is meaningful.
type Result struct {
	Data    any    `json:"data,omitempty"`
	Failed  bool   `json:"error,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// Async builds Deferred calls and settles them concurrently.
type Async struct {
	c *Client
}

// Async returns the concurrent dispatcher bound to c.
func (c *Client) Async() *Async {
	return &Async{c: c}
}

// Get prepares a GET call.
func (a *Async) Get(template string, opts ...RequestOption) Deferred {
	return a.Prepare(http.MethodGet, template, opts...)
}

// Put prepares a PUT call.
func (a *Async) Put(template string, opts ...RequestOption) Deferred {
	return a.Prepare(http.MethodPut, template, opts...)
}

// Post prepares a POST call.
func (a *Async) Post(template string, opts ...RequestOption) Deferred {
	return a.Prepare(http.MethodPost, template, opts...)
}

// Patch prepares a PATCH call.
func (a *Async) Patch(template string, opts ...RequestOption) Deferred {
	return a.Prepare(http.MethodPatch, template, opts...)
}

// Delete prepares a DELETE call.
func (a *Async) Delete(template string, opts ...RequestOption) Deferred {
	return a.Prepare(http.MethodDelete, template, opts...)
}

// Prepare freezes the request now. A build error is returned when the
// Deferred is invoked, so it settles as a failed Result.
func (a *Async) Prepare(method, template string, opts ...RequestOption) Deferred {
	req, err := NewRequest(method, template, opts...)
	if err != nil {
		return func(context.Context) (*http.Response, error) { return nil, err }
	}

	return func(ctx context.Context) (*http.Response, error) {
		return a.c.roundTrip(ctx, req)
	}
}

// Pool runs calls concurrently, at most the client's concurrency at once,
// and waits for all of them. The returned slice matches calls by index.
// One failure never aborts the rest; it is recorded in its own Result.
// A nil entry rejects the whole batch before anything is sent.
func (a *Async) Pool(ctx context.Context, calls []Deferred, opts ...PoolOption) ([]Result, error) {
	for i, call := range calls {
		if call == nil {
			return nil, callerError(ErrNotCallable, fmt.Sprintf("calls[%d] is nil", i))
		}
	}

	var settings poolOpts
	for _, opt := range opts {
		opt(&settings)
	}

	results := make([]Result, len(calls))
	handles := make([]*batch.Handle, len(calls))

	q := batch.NewQueue(a.c.concurrency)
	stop := context.AfterFunc(ctx, q.Shutdown)
	defer stop()

	for i, call := range calls {
		handles[i] = q.Start(ctx, func(ctx context.Context) error {
			results[i] = a.settle(ctx, call, settings)
			return nil
		})
	}

	// Only calls that never ran, or panicked, report an error here.
	_ = q.Wait()
	for i, h := range handles {
		err := h.Err()
		if errors.Is(err, batch.ErrShutdown) {
			err = fmt.Errorf("%w: %w", err, context.Cause(ctx))
		}
		if err != nil {
			results[i] = failure(err)
		}
	}

	a.c.logger.Debug("pool settled", "calls", len(calls))

	return results, nil
}

func (a *Async) settle(ctx context.Context, call Deferred, settings poolOpts) Result {
	resp, err := call(ctx)
	if err != nil {
		return failure(err)
	}
	if resp == nil {
		return failure(fmt.Errorf("%w: nil response", ErrTransport))
	}
	defer a.c.discard(resp)

	// Deferreds built outside Prepare have not been classified yet.
	if cerr := classify(resp.StatusCode); cerr != nil {
		return failure(cerr)
	}

	if settings.headersOnly {
		return Result{Data: resp.Header.Clone()}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Errorf("reading body: %w", err))
	}

	return Result{Data: decode(resp.StatusCode, resp.Header, body, false)}
}

// failure records err as a failed Result. A taxonomy *Error keeps its
// code and message; anything else has code 0.
func failure(err error) Result {
	if e, ok := AsError(err); ok {
		return Result{Failed: true, Code: e.Code, Message: e.Message, Err: e}
	}

	return Result{Failed: true, Message: err.Error(), Err: err}
}
