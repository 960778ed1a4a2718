package domain

import (
	"iter"
	"slices"
)

// VisibleTo reports whether viewer is allowed to read the message.
// Broadcast and system messages are public whatever their recipient field says,
// private messages are only readable by their sender and their recipient.
func (m Message) VisibleTo(viewer string) bool {
	return m.From == viewer || m.To == viewer ||
		m.Kind == KindBroadcast || m.Kind == KindSystem
}

// VisibleTo lazily yields, in append order, the messages viewer may read.
func VisibleTo(messages []Message, viewer string) iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for _, m := range messages {
			if !m.VisibleTo(viewer) {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Tail keeps the last n elements of seq in their original order.
// A non-positive n keeps everything.
func Tail[T any](seq iter.Seq[T], n int) []T {
	if n <= 0 {
		return slices.Collect(seq)
	}
	// ring buffer of the n most recent elements
	ring := make([]T, 0, n)
	next := 0
	for v := range seq {
		if len(ring) < n {
			ring = append(ring, v)
			continue
		}
		ring[next] = v
		next = (next + 1) % n
	}
	if len(ring) < n {
		return ring
	}
	return append(ring[next:], ring[:next]...)
}
