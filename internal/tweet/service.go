package tweet

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/tweet/entity"
	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

// Repository is implemented by *repo.TweetRepo.
type Repository interface {
	Create(ctx context.Context, t *entity.Tweet) error
	GetByID(ctx context.Context, id snowflake.ID) (*entity.Tweet, error)
	ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]entity.View, error)
	Update(ctx context.Context, t *entity.Tweet) (*entity.Tweet, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

// UserLookup checks that the channel whose tweets are listed exists.
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

// Input is the writable part of a tweet. Empty Photo or Video clears the reference.
type Input struct {
	Content string  `json:"content"`
	Photo   *string `json:"photo"`
	Video   *string `json:"video"`
}

func (in Input) normalize() (Input, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return in, apperr.BadRequest("tweet content is required")
	}
	var err error
	if in.Photo, err = mediaRef(in.Photo, "photo"); err != nil {
		return in, err
	}
	if in.Video, err = mediaRef(in.Video, "video"); err != nil {
		return in, err
	}
	return in, nil
}

func mediaRef(v *string, field string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil, nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.BadRequest(field + " must be an http(s) url")
	}
	return &s, nil
}

// Create posts a tweet owned by actor. The owner is never taken from the request.
func (s *Service) Create(ctx context.Context, actor *userentity.User, in Input) (*entity.Tweet, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	t := &entity.Tweet{ID: s.ids.Next(), Owner: actor.ID, Content: in.Content, Photo: in.Photo, Video: in.Video}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperr.Persistence("failed to create tweet", err)
	}
	return t, nil
}

func (s *Service) ListByUser(ctx context.Context, userID snowflake.ID) ([]entity.View, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Persistence("failed to load user", err)
	}
	tweets, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("failed to list tweets", err)
	}
	return tweets, nil
}

func (s *Service) load(ctx context.Context, actor *userentity.User, id snowflake.ID) (*entity.Tweet, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("tweet not found")
		}
		return nil, apperr.Persistence("failed to load tweet", err)
	}
	if err := auth.Authorize(actor, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, actor *userentity.User, id snowflake.ID, in Input) (*entity.Tweet, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	t, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	t.Content, t.Photo, t.Video = in.Content, in.Photo, in.Video
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, apperr.Persistence("failed to update tweet", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor *userentity.User, id snowflake.ID) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("tweet not found")
		}
		return apperr.Persistence("failed to delete tweet", err)
	}
	s.logger.Debugw("tweet deleted", "tweet_id", id, "owner_id", actor.ID)
	return nil
}
