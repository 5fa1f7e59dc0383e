package probe

import "time"

type timed[T any] struct {
	Response     T
	ResponseTime int64 // ms
	Err          error
}

// timeRequest runs fn and records its wall time whether or not it fails.
func timeRequest[T any](fn func() (T, error)) timed[T] {
	start := time.Now()
	resp, err := fn()
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		var zero T
		return timed[T]{Response: zero, ResponseTime: elapsed, Err: err}
	}
	return timed[T]{Response: resp, ResponseTime: elapsed}
}
