package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db           *badger.DB
	participants ParticipantRepository
	messages     MessageRepository
}

func setup(t *testing.T) fixture {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)

	sequencer, err := NewSequencer(db)
	req.NoError(err)
	t.Cleanup(func() {
		_ = sequencer.Release()
		_ = db.Close()
	})

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return fixture{
		db:           db,
		participants: NewParticipantRepository(db, log, sequencer),
		messages:     NewMessageRepository(db, log, sequencer),
	}
}
