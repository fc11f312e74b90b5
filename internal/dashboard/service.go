// Package dashboard reports per-channel totals and the channel's video table.
package dashboard

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/dashboard/entity"
	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

type Repository interface {
	Stats(ctx context.Context, channelID snowflake.ID) (*entity.Stats, error)
	Videos(ctx context.Context, channelID snowflake.ID, includeUnpublished bool) ([]entity.VideoStat, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id snowflake.ID) (*userentity.User, error)
}

type Service struct {
	repo   Repository
	users  UserLookup
	logger *zap.SugaredLogger
}

func NewService(r Repository, users UserLookup, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{repo: r, users: users, logger: logger}
}

func (s *Service) requireChannel(ctx context.Context, id snowflake.ID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("channel not found")
		}
		return apperr.Persistence("failed to load channel", err)
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, channelID snowflake.ID) (*entity.Stats, error) {
	if err := s.requireChannel(ctx, channelID); err != nil {
		return nil, err
	}
	st, err := s.repo.Stats(ctx, channelID)
	if err != nil {
		return nil, apperr.Persistence("failed to load channel stats", err)
	}
	return st, nil
}

// Videos shows unpublished videos only to the channel owner.
func (s *Service) Videos(ctx context.Context, viewer *userentity.User, channelID snowflake.ID) ([]entity.VideoStat, error) {
	if err := s.requireChannel(ctx, channelID); err != nil {
		return nil, err
	}
	own := viewer != nil && viewer.ID == channelID
	videos, err := s.repo.Videos(ctx, channelID, own)
	if err != nil {
		return nil, apperr.Persistence("failed to load channel videos", err)
	}
	return videos, nil
}
