package repositories

import (
	"chat-room/errors"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	participantPrefix  = "participant:"
	messagePrefix      = "msg:"
	messageIndexPrefix = "msgid:"
	messageSequenceKey = "seq:msg"

	// Number of sequence values leased from Badger at once.
	sequenceBandwidth = 128
)

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// messageKey pads the sequence to 20 digits so that lexicographical
// order of keys is the append order of the log.
func messageKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", messagePrefix, seq))
}

func messageIndexKey(id uuid.UUID) []byte {
	return []byte(messageIndexPrefix + id.String())
}

// IsParticipantKey, IsMessageKey and IsMessageIndexKey let inspection tools pick the right decoder.
func IsParticipantKey(key string) bool  { return strings.HasPrefix(key, participantPrefix) }
func IsMessageKey(key string) bool      { return strings.HasPrefix(key, messagePrefix) }
func IsMessageIndexKey(key string) bool { return strings.HasPrefix(key, messageIndexPrefix) }

// Sequencer hands out message keys in append order and guarantees that
// the timestamp of a message never goes back in time relatively to the
// previous one, even if the wall clock does.
type Sequencer struct {
	mu   sync.Mutex
	seq  *badger.Sequence
	last time.Time
}

func NewSequencer(db *badger.DB) (*Sequencer, error) {
	seq, err := db.GetSequence([]byte(messageSequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, storeError(err)
	}
	return &Sequencer{seq: seq}, nil
}

// Next returns the key of the next message and its clamped timestamp.
func (s *Sequencer) Next(at time.Time) ([]byte, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.seq.Next()
	if err != nil {
		return nil, time.Time{}, err
	}
	if at.Before(s.last) {
		at = s.last
	}
	s.last = at
	return messageKey(n), at, nil
}

// Release returns the unused part of the leased range to Badger.
func (s *Sequencer) Release() error {
	return s.seq.Release()
}

// putMessage appends a message and its id index inside txn.
func putMessage(txn *badger.Txn, sequencer *Sequencer, message DiskMessage) (DiskMessage, error) {
	key, at, err := sequencer.Next(message.At)
	if err != nil {
		return DiskMessage{}, err
	}
	message.At = at
	if err = txn.Set(key, EncodeMessage(message)); err != nil {
		return DiskMessage{}, err
	}
	if err = txn.Set(messageIndexKey(message.ID), key); err != nil {
		return DiskMessage{}, err
	}
	return message, nil
}

// storeError keeps client-facing errors untouched and turns anything
// coming from Badger into ErrStoreUnavailable.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, errors.ErrConflict),
		stderrors.Is(err, errors.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
}
