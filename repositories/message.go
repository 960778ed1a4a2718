//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-room/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) (DiskMessage, error)
	GetMessages() ([]DiskMessage, error)
	GetMessage(id uuid.UUID) (DiskMessage, error)
	DeleteMessage(id uuid.UUID) error
}

type MessageRepository struct {
	db        *badger.DB
	log       *slog.Logger
	sequencer *Sequencer
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, sequencer *Sequencer) MessageRepository {
	return MessageRepository{db: db, log: log, sequencer: sequencer}
}

type DiskMessage struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	Kind string
	At   time.Time
}

// StoreMessage appends a message to the log.
// The returned message carries the timestamp actually persisted.
func (m MessageRepository) StoreMessage(message DiskMessage) (DiskMessage, error) {
	var stored DiskMessage
	err := m.db.Update(func(txn *badger.Txn) error {
		var err error
		stored, err = putMessage(txn, m.sequencer, message)
		return err
	})
	if err != nil {
		return DiskMessage{}, storeError(err)
	}
	return stored, nil
}

// GetMessages scans the whole log in append order.
func (m MessageRepository) GetMessages() ([]DiskMessage, error) {
	var messages []DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(messagePrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(value []byte) error {
				message, err := DecodeMessage(value)
				if err != nil {
					return fmt.Errorf("key %s: %w", item.Key(), err)
				}
				messages = append(messages, message)
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
	m.log.Debug("Messages loaded", "count", len(messages))
	return messages, nil
}

func (m MessageRepository) GetMessage(id uuid.UUID) (DiskMessage, error) {
	var message DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		key, err := lookupMessageKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			message, err = DecodeMessage(value)
			return err
		})
	})
	if err == badger.ErrKeyNotFound {
		return DiskMessage{}, fmt.Errorf("message %s: %w", id, errors.ErrNotFound)
	}
	return message, storeError(err)
}

// DeleteMessage removes the message and its id index in one transaction.
func (m MessageRepository) DeleteMessage(id uuid.UUID) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		key, err := lookupMessageKey(txn, id)
		if err != nil {
			return err
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIndexKey(id))
	})
	if err == badger.ErrKeyNotFound {
		return fmt.Errorf("message %s: %w", id, errors.ErrNotFound)
	}
	return storeError(err)
}

func lookupMessageKey(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(messageIndexKey(id))
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
