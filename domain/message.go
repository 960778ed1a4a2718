// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once appended, deletion is terminal.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the reserved recipient meaning "everyone".
const Broadcast = "Todos"

const (
	JoinNotice  = "entered the room"
	LeaveNotice = "left the room"
)

// Kind values keep the wire names of the first version of the chat.
type Kind string

const (
	KindBroadcast Kind = "message"
	KindPrivate   Kind = "private_message"
	KindSystem    Kind = "status"
)

// Sendable reports whether a participant may post a message of this kind.
// System messages are produced by the presence registry only.
func (k Kind) Sendable() bool {
	return k == KindBroadcast || k == KindPrivate
}

// Message represents an immutable chat event.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	Kind Kind
	At   time.Time
}

// NewJoinNotice builds the system message appended when a participant enters.
func NewJoinNotice(name string, at time.Time) Message {
	return systemNotice(name, JoinNotice, at)
}

// NewLeaveNotice builds the system message appended when a participant is evicted.
func NewLeaveNotice(name string, at time.Time) Message {
	return systemNotice(name, LeaveNotice, at)
}

func systemNotice(name, text string, at time.Time) Message {
	return Message{
		ID:   uuid.New(),
		From: name,
		To:   Broadcast,
		Text: text,
		Kind: KindSystem,
		At:   at,
	}
}
