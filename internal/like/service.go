package like

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/like/entity"
	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	videoentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

// Repository is implemented by *repo.LikeRepo.
type Repository interface {
	TargetExists(ctx context.Context, t entity.Target, id, viewerID snowflake.ID) (bool, error)
	Find(ctx context.Context, t entity.Target, targetID, userID snowflake.ID) (*entity.Like, error)
	Add(ctx context.Context, t entity.Target, id, targetID, userID snowflake.ID) (int64, error)
	Remove(ctx context.Context, t entity.Target, likeID, targetID snowflake.ID) (int64, error)
	LikedVideos(ctx context.Context, userID snowflake.ID) ([]videoentity.Detail, error)
}

type Service struct {
	repo   Repository
	ids    *utilities.IDGenerator
	logger *zap.SugaredLogger
}

func NewService(r Repository, ids *utilities.IDGenerator, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{repo: r, ids: ids, logger: logger}
}

// Toggle likes the target for actor, or removes actor's existing like.
func (s *Service) Toggle(ctx context.Context, actor *userentity.User, t entity.Target, targetID snowflake.ID) (*entity.Toggle, error) {
	exists, err := s.repo.TargetExists(ctx, t, targetID, actor.ID)
	if err != nil {
		return nil, apperr.Persistence("failed to load "+t.String(), err)
	}
	if !exists {
		return nil, apperr.NotFound(t.String() + " not found")
	}

	existing, err := s.repo.Find(ctx, t, targetID, actor.ID)
	switch {
	case err == nil:
		if err := auth.Authorize(actor, existing); err != nil {
			return nil, err
		}
		count, err := s.repo.Remove(ctx, t, existing.ID, targetID)
		if err != nil {
			return nil, apperr.Persistence("failed to remove like", err)
		}
		return &entity.Toggle{Liked: false, LikeCount: count}, nil
	case errors.Is(err, sql.ErrNoRows):
		count, err := s.repo.Add(ctx, t, s.ids.Next(), targetID, actor.ID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return nil, apperr.Conflict("like already recorded")
			}
			return nil, apperr.Persistence("failed to add like", err)
		}
		return &entity.Toggle{Liked: true, LikeCount: count}, nil
	default:
		return nil, apperr.Persistence("failed to load like", err)
	}
}

func (s *Service) LikedVideos(ctx context.Context, actor *userentity.User) ([]videoentity.Detail, error) {
	videos, err := s.repo.LikedVideos(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Persistence("failed to load liked videos", err)
	}
	return videos, nil
}
