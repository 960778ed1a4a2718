//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"chat-room/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IParticipantRepository interface {
	Create(participant DiskParticipant, notice DiskMessage) error
	Touch(name string, at time.Time) error
	Exists(name string) (bool, error)
	List() ([]DiskParticipant, error)
	Evict(name string, cutoff time.Time, notice DiskMessage) (bool, error)
}

type ParticipantRepository struct {
	db        *badger.DB
	log       *slog.Logger
	sequencer *Sequencer
}

func NewParticipantRepository(db *badger.DB, log *slog.Logger, sequencer *Sequencer) ParticipantRepository {
	return ParticipantRepository{db: db, log: log, sequencer: sequencer}
}

type DiskParticipant struct {
	Name          string
	LastHeartbeat time.Time
}

// Create inserts the participant and its join notice in the same transaction.
// Uniqueness is checked inside the transaction: two concurrent joins of the
// same name conflict at commit and only one of them succeeds.
func (r ParticipantRepository) Create(participant DiskParticipant, notice DiskMessage) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(participant.Name)
		_, err := txn.Get(key)
		switch err {
		case nil:
			return fmt.Errorf("%w: %s", errors.ErrConflict, participant.Name)
		case badger.ErrKeyNotFound:
		default:
			return err
		}
		if err = txn.Set(key, EncodeParticipant(participant)); err != nil {
			return err
		}
		_, err = putMessage(txn, r.sequencer, notice)
		return err
	})
	if err == badger.ErrConflict {
		return fmt.Errorf("%w: %s", errors.ErrConflict, participant.Name)
	}
	return storeError(err)
}

// Touch refreshes the heartbeat of an existing participant.
// Losing a write conflict means another transaction touched the same key first:
// a concurrent heartbeat, which already did the job, or an eviction.
func (r ParticipantRepository) Touch(name string, at time.Time) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(name)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Set(key, EncodeParticipant(DiskParticipant{Name: name, LastHeartbeat: at}))
	})
	if err == badger.ErrConflict {
		r.log.Debug("Concurrent heartbeat", "name", name)
		exists, err := r.Exists(name)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		err = badger.ErrKeyNotFound
	}
	if err == badger.ErrKeyNotFound {
		return fmt.Errorf("participant %s: %w", name, errors.ErrNotFound)
	}
	return storeError(err)
}

func (r ParticipantRepository) Exists(name string) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(participantKey(name))
		return err
	})
	switch err {
	case nil:
		return true, nil
	case badger.ErrKeyNotFound:
		return false, nil
	default:
		return false, storeError(err)
	}
}

// List returns a snapshot of every active participant, in key order (by name).
func (r ParticipantRepository) List() ([]DiskParticipant, error) {
	var participants []DiskParticipant
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(participantPrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				p, err := DecodeParticipant(value)
				if err != nil {
					return err
				}
				participants = append(participants, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return participants, nil
}

// Evict removes the participant and appends its leave notice atomically,
// provided its heartbeat is still older than cutoff.
// It reports false when the participant is gone or came back to life
// since the snapshot that selected it.
func (r ParticipantRepository) Evict(name string, cutoff time.Time, notice DiskMessage) (bool, error) {
	evicted := false
	err := r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(name)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var participant DiskParticipant
		err = item.Value(func(value []byte) error {
			participant, err = DecodeParticipant(value)
			return err
		})
		if err != nil {
			return err
		}
		if !participant.LastHeartbeat.Before(cutoff) {
			r.log.Debug("Participant refreshed before eviction", "name", name)
			return nil
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		if _, err = putMessage(txn, r.sequencer, notice); err != nil {
			return err
		}
		evicted = true
		return nil
	})
	if err == badger.ErrConflict {
		// a heartbeat rewrote the participant after it was read
		r.log.Debug("Participant refreshed during eviction", "name", name)
		return false, nil
	}
	if err != nil {
		return false, storeError(err)
	}
	return evicted, nil
}
