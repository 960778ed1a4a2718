//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageService interface {
	Send(ctx context.Context, cmd domain.SendMessageCommand) error
	List(ctx context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, error)
	Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error
}

// Censor rewrites forbidden words of a text and reports the words it found.
type Censor interface {
	Censor(text string) (string, []string)
}

type MessageService struct {
	log          *slog.Logger
	messages     repositories.IMessageRepository
	participants repositories.IParticipantRepository
	clock        Clock
	censor       Censor
}

// NewMessageService builds the message log service. censor may be nil.
func NewMessageService(log *slog.Logger, messages repositories.IMessageRepository,
	participants repositories.IParticipantRepository, clock Clock, censor Censor) *MessageService {
	return &MessageService{
		log:          log,
		messages:     messages,
		participants: participants,
		clock:        clock,
		censor:       censor,
	}
}

// Send appends a broadcast or private message from a registered participant.
func (s *MessageService) Send(ctx context.Context, cmd domain.SendMessageCommand) error {
	from := domain.NormalizeName(cmd.From)
	to := domain.NormalizeName(cmd.To)
	err := validate.Struct(sendRequest{To: to, Text: strings.TrimSpace(cmd.Text), Kind: cmd.Kind})
	if err != nil {
		return validationError(err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	registered := false
	if from != "" {
		if registered, err = s.participants.Exists(from); err != nil {
			return err
		}
	}
	if !registered {
		return fmt.Errorf("%w: %q is not a participant", errors.ErrAuth, from)
	}

	text := cmd.Text
	if s.censor != nil {
		var words []string
		if text, words = s.censor.Censor(text); len(words) > 0 {
			s.log.Info("Message censored", "from", from, "words", len(words))
		}
	}

	stored, err := s.messages.StoreMessage(toDiskMessage(domain.Message{
		ID:   uuid.New(),
		From: from,
		To:   to,
		Text: text,
		Kind: cmd.Kind,
		At:   s.clock(),
	}))
	if err != nil {
		return err
	}
	s.log.Debug("Message appended", "id", stored.ID, "from", from, "kind", stored.Kind)
	return nil
}

// List returns the last cmd.Limit messages cmd.Viewer is allowed to read, oldest first.
func (s *MessageService) List(ctx context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	messages, err := s.messages.GetMessages()
	if err != nil {
		return nil, err
	}
	viewer := domain.NormalizeName(cmd.Viewer)
	return domain.Tail(domain.VisibleTo(fromDiskMessages(messages), viewer), cmd.Limit), nil
}

// Delete removes a message on behalf of its sender.
func (s *MessageService) Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	id, err := uuid.Parse(cmd.ID)
	if err != nil {
		return fmt.Errorf("message %q: %w", cmd.ID, errors.ErrNotFound)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	message, err := s.messages.GetMessage(id)
	if err != nil {
		return err
	}
	if message.From != domain.NormalizeName(cmd.Requester) {
		return fmt.Errorf("%w: message %s belongs to %q", errors.ErrAuth, id, message.From)
	}
	if err = s.messages.DeleteMessage(id); err != nil {
		return err
	}
	s.log.Info("Message deleted", "id", id, "from", message.From)
	return nil
}

func toDiskMessage(m domain.Message) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:   m.ID,
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Kind: string(m.Kind),
		At:   m.At,
	}
}

func fromDiskMessages(messages []repositories.DiskMessage) []domain.Message {
	return lo.Map(messages, func(item repositories.DiskMessage, _ int) domain.Message {
		return domain.Message{
			ID:   item.ID,
			From: item.From,
			To:   item.To,
			Text: item.Text,
			Kind: domain.Kind(item.Kind),
			At:   item.At,
		}
	})
}
