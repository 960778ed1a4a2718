package services

import (
	"chat-room/errors"
	"chat-room/mocks"
	"chat-room/repositories"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2026, 10, 15, 10, 44, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func TestPresenceService_Join(t *testing.T) {
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIParticipantRepository(ctrl)
	service := NewPresenceService(log, repository, fixedClock)

	t.Run("should insert the participant with a join notice", func(t *testing.T) {
		req := require.New(t)
		repository.EXPECT().
			Create(repositories.DiskParticipant{Name: "Alice", LastHeartbeat: now}, gomock.Any()).
			DoAndReturn(func(_ repositories.DiskParticipant, notice repositories.DiskMessage) error {
				req.Equal("Alice", notice.From)
				req.Equal("Todos", notice.To)
				req.Equal("entered the room", notice.Text)
				req.Equal("status", notice.Kind)
				req.Equal(now, notice.At)
				return nil
			}).
			Times(1)

		req.NoError(service.Join(ctx, "  Alice "))
	})

	t.Run("should reject blank names without touching the store", func(t *testing.T) {
		req := require.New(t)
		repository.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

		req.ErrorIs(service.Join(ctx, ""), errors.ErrValidation)
		req.ErrorIs(service.Join(ctx, "   "), errors.ErrValidation)
	})

	t.Run("should propagate conflicts", func(t *testing.T) {
		req := require.New(t)
		repository.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("%w: Alice", errors.ErrConflict)).
			Times(1)

		req.ErrorIs(service.Join(ctx, "Alice"), errors.ErrConflict)
	})
}

func TestPresenceService_Heartbeat(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIParticipantRepository(ctrl)
	service := NewPresenceService(log, repository, fixedClock)

	repository.EXPECT().Touch("Alice", now).Return(nil).Times(1)
	repository.EXPECT().Touch("Bob", now).Return(errors.ErrNotFound).Times(1)

	req.NoError(service.Heartbeat(ctx, "Alice"))
	req.ErrorIs(service.Heartbeat(ctx, "Bob"), errors.ErrNotFound)
}

func TestPresenceService_List(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIParticipantRepository(ctrl)
	service := NewPresenceService(log, repository, fixedClock)

	repository.EXPECT().List().Return([]repositories.DiskParticipant{
		{Name: "Alice", LastHeartbeat: now},
		{Name: "Bob", LastHeartbeat: now.Add(-time.Second)},
	}, nil)

	participants, err := service.List(ctx)
	req.NoError(err)
	req.Len(participants, 2)
	req.Equal("Alice", participants[0].Name)
	req.Equal(now.Add(-time.Second), participants[1].LastHeartbeat)
}

func TestPresenceService_SweepExpired(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIParticipantRepository(ctrl)
	service := NewPresenceService(log, repository, fixedClock)
	expiry := 10 * time.Second

	// Given one fresh, one expired, one exactly on the threshold
	repository.EXPECT().List().Return([]repositories.DiskParticipant{
		{Name: "Alice", LastHeartbeat: now.Add(-time.Second)},
		{Name: "Bob", LastHeartbeat: now.Add(-11 * time.Second)},
		{Name: "Clara", LastHeartbeat: now.Add(-expiry)},
	}, nil)

	// Then only Bob is evicted, with a leave notice
	repository.EXPECT().
		Evict("Bob", now.Add(-expiry), gomock.Any()).
		DoAndReturn(func(_ string, _ time.Time, notice repositories.DiskMessage) (bool, error) {
			req.Equal("Bob", notice.From)
			req.Equal("left the room", notice.Text)
			req.Equal("status", notice.Kind)
			return true, nil
		}).
		Times(1)

	evicted, err := service.SweepExpired(ctx, now, expiry)
	req.NoError(err)
	req.Equal([]string{"Bob"}, evicted)
}

func TestPresenceService_SweepExpired_Keeps_Going_After_A_Failure(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIParticipantRepository(ctrl)
	service := NewPresenceService(log, repository, fixedClock)
	old := now.Add(-time.Minute)

	repository.EXPECT().List().Return([]repositories.DiskParticipant{
		{Name: "Alice", LastHeartbeat: old},
		{Name: "Bob", LastHeartbeat: old},
		{Name: "Clara", LastHeartbeat: old},
	}, nil)
	repository.EXPECT().Evict("Alice", gomock.Any(), gomock.Any()).Return(false, fmt.Errorf("%w: io", errors.ErrStoreUnavailable))
	// Bob sent a heartbeat after the snapshot
	repository.EXPECT().Evict("Bob", gomock.Any(), gomock.Any()).Return(false, nil)
	repository.EXPECT().Evict("Clara", gomock.Any(), gomock.Any()).Return(true, nil)

	evicted, err := service.SweepExpired(ctx, now, 10*time.Second)
	req.ErrorIs(err, errors.ErrStoreUnavailable)
	req.Equal([]string{"Clara"}, evicted)
}

func TestPresenceService_SweepExpired_Store_Down(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIParticipantRepository(ctrl)
	service := NewPresenceService(log, repository, fixedClock)

	repository.EXPECT().List().Return(nil, fmt.Errorf("%w: closed", errors.ErrStoreUnavailable))
	repository.EXPECT().Evict(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	evicted, err := service.SweepExpired(ctx, now, 10*time.Second)
	req.ErrorIs(err, errors.ErrStoreUnavailable)
	req.Empty(evicted)
}

func TestPresenceService_Canceled_Context(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIParticipantRepository(ctrl)
	service := NewPresenceService(log, repository, fixedClock)

	err := service.Join(ctx, "Alice")
	req.True(stderrors.Is(err, context.Canceled))
	_, err = service.SweepExpired(ctx, now, time.Second)
	req.ErrorIs(err, context.Canceled)
}
