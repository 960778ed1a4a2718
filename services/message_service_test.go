package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/mocks"
	"chat-room/repositories"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeCensor struct{}

func (fakeCensor) Censor(text string) (string, []string) {
	if strings.Contains(text, "badger") {
		return strings.ReplaceAll(text, "badger", "******"), []string{"badger"}
	}
	return text, nil
}

func TestMessageService_Send(t *testing.T) {
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	service := NewMessageService(log, messages, participants, fixedClock, nil)

	t.Run("should append a private message from a participant", func(t *testing.T) {
		req := require.New(t)
		participants.EXPECT().Exists("Alice").Return(true, nil)
		messages.EXPECT().
			StoreMessage(gomock.Any()).
			DoAndReturn(func(m repositories.DiskMessage) (repositories.DiskMessage, error) {
				req.NotEqual(uuid.Nil, m.ID)
				req.Equal("Alice", m.From)
				req.Equal("Bob", m.To)
				req.Equal("psst", m.Text)
				req.Equal("private_message", m.Kind)
				req.Equal(now, m.At)
				return m, nil
			})

		req.NoError(service.Send(ctx, domain.SendMessageCommand{
			From: "Alice", To: "Bob", Text: "psst", Kind: domain.KindPrivate,
		}))
	})

	t.Run("should reject invalid bodies before any lookup", func(t *testing.T) {
		participants.EXPECT().Exists(gomock.Any()).Times(0)
		messages.EXPECT().StoreMessage(gomock.Any()).Times(0)

		invalid := []domain.SendMessageCommand{
			{From: "Alice", To: "", Text: "hello", Kind: domain.KindBroadcast},
			{From: "Alice", To: "Todos", Text: "", Kind: domain.KindBroadcast},
			{From: "Alice", To: "Todos", Text: "   ", Kind: domain.KindBroadcast},
			{From: "Alice", To: "Todos", Text: "hello", Kind: domain.KindSystem},
			{From: "Alice", To: "Todos", Text: "hello", Kind: "shout"},
			{From: "Alice", To: "Todos", Text: "hello", Kind: ""},
		}
		for _, cmd := range invalid {
			require.ErrorIs(t, service.Send(ctx, cmd), errors.ErrValidation, "cmd=%+v", cmd)
		}
	})

	t.Run("should reject unknown senders", func(t *testing.T) {
		req := require.New(t)
		participants.EXPECT().Exists("Mallory").Return(false, nil)
		messages.EXPECT().StoreMessage(gomock.Any()).Times(0)

		err := service.Send(ctx, domain.SendMessageCommand{
			From: "Mallory", To: "Todos", Text: "hello", Kind: domain.KindBroadcast,
		})
		req.ErrorIs(err, errors.ErrAuth)

		err = service.Send(ctx, domain.SendMessageCommand{
			From: " ", To: "Todos", Text: "hello", Kind: domain.KindBroadcast,
		})
		req.ErrorIs(err, errors.ErrAuth)
	})

	t.Run("should propagate store failures", func(t *testing.T) {
		req := require.New(t)
		participants.EXPECT().Exists("Alice").Return(false, errors.ErrStoreUnavailable)

		err := service.Send(ctx, domain.SendMessageCommand{
			From: "Alice", To: "Todos", Text: "hello", Kind: domain.KindBroadcast,
		})
		req.ErrorIs(err, errors.ErrStoreUnavailable)
	})
}

func TestMessageService_Send_With_Censor(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	service := NewMessageService(log, messages, participants, fixedClock, fakeCensor{})

	participants.EXPECT().Exists("Alice").Return(true, nil)
	messages.EXPECT().
		StoreMessage(gomock.Any()).
		DoAndReturn(func(m repositories.DiskMessage) (repositories.DiskMessage, error) {
			req.Equal("the ****** is here", m.Text)
			return m, nil
		})

	req.NoError(service.Send(ctx, domain.SendMessageCommand{
		From: "Alice", To: "Todos", Text: "the badger is here", Kind: domain.KindBroadcast,
	}))
}

func TestMessageService_List(t *testing.T) {
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	service := NewMessageService(log, messages, participants, fixedClock, nil)

	log5 := []repositories.DiskMessage{
		{ID: uuid.New(), From: "Alice", To: "Todos", Text: "entered the room", Kind: "status", At: now},
		{ID: uuid.New(), From: "Alice", To: "Todos", Text: "one", Kind: "message", At: now},
		{ID: uuid.New(), From: "Alice", To: "Bob", Text: "two", Kind: "private_message", At: now},
		{ID: uuid.New(), From: "Bob", To: "Todos", Text: "three", Kind: "message", At: now},
		{ID: uuid.New(), From: "Bob", To: "Alice", Text: "four", Kind: "private_message", At: now},
	}
	messages.EXPECT().GetMessages().Return(log5, nil).AnyTimes()

	tests := []struct {
		name     string
		cmd      domain.GetMessagesCommand
		expected []string
	}{
		{"alice sees everything", domain.GetMessagesCommand{Viewer: "Alice"},
			[]string{"entered the room", "one", "two", "three", "four"}},
		{"carol sees public messages", domain.GetMessagesCommand{Viewer: "Carol"},
			[]string{"entered the room", "one", "three"}},
		{"limit keeps the last ones", domain.GetMessagesCommand{Viewer: "Alice", Limit: 2},
			[]string{"three", "four"}},
		{"limit applies after filtering", domain.GetMessagesCommand{Viewer: "Carol", Limit: 2},
			[]string{"one", "three"}},
		{"no viewer sees public messages", domain.GetMessagesCommand{Limit: -1},
			[]string{"entered the room", "one", "three"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			result, err := service.List(ctx, tt.cmd)
			req.NoError(err)
			texts := make([]string, 0, len(result))
			for _, m := range result {
				texts = append(texts, m.Text)
			}
			req.Equal(tt.expected, texts)
		})
	}
}

func TestMessageService_Delete(t *testing.T) {
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	participants := mocks.NewMockIParticipantRepository(ctrl)
	service := NewMessageService(log, messages, participants, fixedClock, nil)
	id := uuid.New()
	stored := repositories.DiskMessage{ID: id, From: "Alice", To: "Todos", Text: "oops", Kind: "message", At: time.Now()}

	t.Run("should let the sender delete", func(t *testing.T) {
		req := require.New(t)
		messages.EXPECT().GetMessage(id).Return(stored, nil)
		messages.EXPECT().DeleteMessage(id).Return(nil)

		req.NoError(service.Delete(ctx, domain.DeleteMessageCommand{ID: id.String(), Requester: "Alice"}))
	})

	t.Run("should refuse anyone else", func(t *testing.T) {
		req := require.New(t)
		messages.EXPECT().GetMessage(id).Return(stored, nil)
		messages.EXPECT().DeleteMessage(gomock.Any()).Times(0)

		err := service.Delete(ctx, domain.DeleteMessageCommand{ID: id.String(), Requester: "Bob"})
		req.ErrorIs(err, errors.ErrAuth)
	})

	t.Run("should report unknown or malformed ids as not found", func(t *testing.T) {
		req := require.New(t)
		messages.EXPECT().GetMessage(gomock.Any()).Return(repositories.DiskMessage{}, errors.ErrNotFound)

		req.ErrorIs(service.Delete(ctx, domain.DeleteMessageCommand{ID: uuid.NewString(), Requester: "Alice"}), errors.ErrNotFound)
		req.ErrorIs(service.Delete(ctx, domain.DeleteMessageCommand{ID: "not-a-uuid", Requester: "Alice"}), errors.ErrNotFound)
	})
}
