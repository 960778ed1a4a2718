//go:generate go run go.uber.org/mock/mockgen -source=presence_service.go -destination=../mocks/mock_presence_service.go -package=mocks
package services

import (
	"chat-room/domain"
	"chat-room/repositories"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

type IPresenceService interface {
	Join(ctx context.Context, name string) error
	Heartbeat(ctx context.Context, name string) error
	List(ctx context.Context) ([]domain.Participant, error)
	SweepExpired(ctx context.Context, now time.Time, expiry time.Duration) ([]string, error)
}

type PresenceService struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	clock        Clock
}

func NewPresenceService(log *slog.Logger, participants repositories.IParticipantRepository, clock Clock) *PresenceService {
	return &PresenceService{log: log, participants: participants, clock: clock}
}

// Join registers a new presence and announces it to the room.
func (s *PresenceService) Join(ctx context.Context, name string) error {
	name = domain.NormalizeName(name)
	if err := validate.Struct(joinRequest{Name: name}); err != nil {
		return validationError(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	now := s.clock()
	err := s.participants.Create(
		repositories.DiskParticipant{Name: name, LastHeartbeat: now},
		toDiskMessage(domain.NewJoinNotice(name, now)),
	)
	if err != nil {
		return err
	}
	s.log.Info("Participant joined", "name", name)
	return nil
}

// Heartbeat refreshes the expiry clock of a participant. Nothing is appended to the log.
func (s *PresenceService) Heartbeat(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.participants.Touch(domain.NormalizeName(name), s.clock())
}

func (s *PresenceService) List(ctx context.Context) ([]domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	participants, err := s.participants.List()
	if err != nil {
		return nil, err
	}
	return lo.Map(participants, func(item repositories.DiskParticipant, _ int) domain.Participant {
		return domain.Participant{Name: item.Name, LastHeartbeat: item.LastHeartbeat}
	}), nil
}

// SweepExpired evicts every participant whose heartbeat is older than expiry.
// Each eviction removes the participant and appends its leave notice in one
// transaction. A failing eviction does not prevent the others.
func (s *PresenceService) SweepExpired(ctx context.Context, now time.Time, expiry time.Duration) ([]string, error) {
	participants, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	expired := lo.Filter(participants, func(p domain.Participant, _ int) bool {
		return p.Expired(now, expiry)
	})

	var evicted []string
	var errs []error
	cutoff := now.Add(-expiry)
	for _, p := range expired {
		if err = ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ok, err := s.participants.Evict(p.Name, cutoff, toDiskMessage(domain.NewLeaveNotice(p.Name, s.clock())))
		if err != nil {
			errs = append(errs, fmt.Errorf("evict %s: %w", p.Name, err))
			continue
		}
		if ok {
			s.log.Info("Participant evicted", "name", p.Name, "last_heartbeat", p.LastHeartbeat)
			evicted = append(evicted, p.Name)
		}
	}
	return evicted, stderrors.Join(errs...)
}
