package subscription

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/subscription/entity"
	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

// Repository is implemented by *repo.SubscriptionRepo.
type Repository interface {
	Find(ctx context.Context, subscriberID, channelID snowflake.ID) (*entity.Subscription, error)
	Add(ctx context.Context, s *entity.Subscription) (int64, error)
	Remove(ctx context.Context, s *entity.Subscription) (int64, error)
	Subscribers(ctx context.Context, channelID snowflake.ID) ([]entity.Entry, error)
	Channels(ctx context.Context, subscriberID snowflake.ID) ([]entity.Entry, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id snowflake.ID) (*userentity.User, error)
}

type Service struct {
	repo   Repository
	users  UserLookup
	ids    *utilities.IDGenerator
	logger *zap.SugaredLogger
}

func NewService(r Repository, users UserLookup, ids *utilities.IDGenerator, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{repo: r, users: users, ids: ids, logger: logger}
}

func (s *Service) requireUser(ctx context.Context, id snowflake.ID, what string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound(what + " not found")
		}
		return apperr.Persistence("failed to load "+what, err)
	}
	return nil
}

// Toggle subscribes actor to channelID, or cancels the existing subscription.
func (s *Service) Toggle(ctx context.Context, actor *userentity.User, channelID snowflake.ID) (*entity.Toggle, error) {
	if channelID == actor.ID {
		return nil, apperr.BadRequest("you cannot subscribe to your own channel")
	}
	if err := s.requireUser(ctx, channelID, "channel"); err != nil {
		return nil, err
	}
	out := &entity.Toggle{Subscriber: actor.ID, Channel: channelID}
	existing, err := s.repo.Find(ctx, actor.ID, channelID)
	switch {
	case err == nil:
		if err := auth.Authorize(actor, existing); err != nil {
			return nil, err
		}
		if out.SubscriberCount, err = s.repo.Remove(ctx, existing); err != nil {
			return nil, apperr.Persistence("failed to unsubscribe", err)
		}
		return out, nil
	case errors.Is(err, sql.ErrNoRows):
		sub := &entity.Subscription{ID: s.ids.Next(), Subscriber: actor.ID, Channel: channelID}
		if out.SubscriberCount, err = s.repo.Add(ctx, sub); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, apperr.Conflict("already subscribed to this channel")
			}
			return nil, apperr.Persistence("failed to subscribe", err)
		}
		out.Subscribed = true
		return out, nil
	default:
		return nil, apperr.Persistence("failed to load subscription", err)
	}
}

func (s *Service) Subscribers(ctx context.Context, channelID snowflake.ID) ([]entity.Entry, error) {
	if err := s.requireUser(ctx, channelID, "channel"); err != nil {
		return nil, err
	}
	out, err := s.repo.Subscribers(ctx, channelID)
	if err != nil {
		return nil, apperr.Persistence("failed to list subscribers", err)
	}
	return out, nil
}

func (s *Service) Channels(ctx context.Context, subscriberID snowflake.ID) ([]entity.Entry, error) {
	if err := s.requireUser(ctx, subscriberID, "subscriber"); err != nil {
		return nil, err
	}
	out, err := s.repo.Channels(ctx, subscriberID)
	if err != nil {
		return nil, apperr.Persistence("failed to list subscribed channels", err)
	}
	return out, nil
}
