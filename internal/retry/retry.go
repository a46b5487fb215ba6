// Package retry holds the bounded-retry policy used around the song
// generator. The policy is a value so callers (and tests) can state the
// ceiling and the acceptability predicate explicitly instead of burying
// them in loop control flow.
package retry

import "errors"

var ErrExhausted = errors.New("retry: attempts exhausted")

// Value calls fn up to attempts times and returns the first result that
// accept approves of. Results that fn produced without error but accept
// rejected are remembered: when the ceiling is reached, the most recent
// of them is returned rather than failing. Only when every attempt
// errored does Value return an error, wrapping the last one.
func Value[T any](attempts int, fn func(attempt int) (T, error), accept func(T) bool) (T, error) {
	var (
		last     T
		haveLast bool
		lastErr  error
	)
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		v, err := fn(i)
		if err != nil {
			lastErr = err
			continue
		}
		if accept == nil || accept(v) {
			return v, nil
		}
		last = v
		haveLast = true
	}
	if haveLast {
		return last, nil
	}
	var zero T
	if lastErr == nil {
		return zero, ErrExhausted
	}
	return zero, errors.Join(ErrExhausted, lastErr)
}
