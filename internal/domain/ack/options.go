package ack

// DefaultCapacity is the number of message ids remembered by default.
const DefaultCapacity = 50000

// Option applies a configuration option to a Tracker.
type Option func(*Tracker)

// WithCapacity bounds how many ids are remembered. Once full, the oldest
// acknowledgement is forgotten first. A capacity of zero or less means no
// bound.
func WithCapacity(n int) Option {
	return func(t *Tracker) {
		t.capacity = n
	}
}
