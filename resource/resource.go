// Package resource standardizes how async operations report their outcome:
// every network-backed call emits Loading followed by exactly one terminal
// state (Success or Error), then nothing more.
package resource

import "context"

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// State is one emission of an async operation. Data is only valid when
// Status is StatusSuccess; Err is non-nil exactly when Status is StatusError.
type State[T any] struct {
	Status Status
	Data   T
	Err    error
}

func Loading[T any]() State[T] {
	return State[T]{Status: StatusLoading}
}

func Success[T any](data T) State[T] {
	return State[T]{Status: StatusSuccess, Data: data}
}

func Error[T any](err error) State[T] {
	return State[T]{Status: StatusError, Err: err}
}

func (s State[T]) IsLoading() bool { return s.Status == StatusLoading }
func (s State[T]) IsSuccess() bool { return s.Status == StatusSuccess }
func (s State[T]) IsError() bool   { return s.Status == StatusError }

// Go runs fn on its own goroutine and returns a channel that carries
// Loading, then the terminal state, and is then closed. The buffer covers
// both emissions, so fn never blocks on a slow consumer. Retrying means
// calling Go again; a single returned channel never restarts.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan State[T] {
	out := make(chan State[T], 2)
	out <- Loading[T]()
	go func() {
		defer close(out)
		data, err := fn(ctx)
		if err != nil {
			out <- Error[T](err)
			return
		}
		out <- Success(data)
	}()
	return out
}

// Reject reports a client-side validation failure. No Loading is emitted
// because no work was started; the channel carries the terminal Error and
// is closed immediately.
func Reject[T any](err error) <-chan State[T] {
	out := make(chan State[T], 1)
	out <- Error[T](err)
	close(out)
	return out
}

// Await drains the channel and returns the terminal state. Intended for
// callers that have no use for the intermediate Loading emission.
func Await[T any](ch <-chan State[T]) State[T] {
	var last State[T]
	for s := range ch {
		last = s
	}
	return last
}
