// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"
	"time"
)

// Participant is an active presence in the room.
// A name identifies at most one participant at any instant.
type Participant struct {
	Name          string
	LastHeartbeat time.Time
}

// Expired reports whether the last liveness signal is strictly older than expiry.
func (p Participant) Expired(now time.Time, expiry time.Duration) bool {
	return now.Sub(p.LastHeartbeat) > expiry
}

// NormalizeName trims the surrounding whitespace of a presence name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
