package comment

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/comment/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/httpx"
	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

// Repository is implemented by *repo.CommentRepo.
type Repository interface {
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id snowflake.ID) (*entity.Comment, error)
	ListByVideo(ctx context.Context, videoID snowflake.ID, limit, offset int) ([]entity.View, int, error)
	UpdateContent(ctx context.Context, id snowflake.ID, content string) (*entity.Comment, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

// VideoLookup checks that the commented video exists and is visible to the viewer.
type VideoLookup interface {
	Visible(ctx context.Context, id, viewerID snowflake.ID) (bool, error)
}

type Service struct {
	repo   Repository
	videos VideoLookup
	ids    *utilities.IDGenerator
	logger *zap.SugaredLogger
}

func NewService(r Repository, videos VideoLookup, ids *utilities.IDGenerator, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{repo: r, videos: videos, ids: ids, logger: logger}
}

// Page is one page of comments under a video.
type Page struct {
	Comments []entity.View `json:"comments"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Pages    int           `json:"pages"`
}

// requireVideo treats an unpublished video of another channel as missing.
func (s *Service) requireVideo(ctx context.Context, viewer *userentity.User, videoID snowflake.ID) error {
	var viewerID snowflake.ID
	if viewer != nil {
		viewerID = viewer.ID
	}
	ok, err := s.videos.Visible(ctx, videoID, viewerID)
	if err != nil {
		return apperr.Persistence("failed to load video", err)
	}
	if !ok {
		return apperr.NotFound("video not found")
	}
	return nil
}

func (s *Service) List(ctx context.Context, viewer *userentity.User, videoID snowflake.ID, page, limit int) (*Page, error) {
	if err := s.requireVideo(ctx, viewer, videoID); err != nil {
		return nil, err
	}
	comments, total, err := s.repo.ListByVideo(ctx, videoID, limit, httpx.Offset(page, limit))
	if err != nil {
		return nil, apperr.Persistence("failed to list comments", err)
	}
	return &Page{Comments: comments, Total: total, Page: page, Pages: httpx.Pages(total, limit)}, nil
}

func (s *Service) Add(ctx context.Context, actor *userentity.User, videoID snowflake.ID, content string) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.BadRequest("comment content is required")
	}
	if err := s.requireVideo(ctx, actor, videoID); err != nil {
		return nil, err
	}
	c := &entity.Comment{ID: s.ids.Next(), Video: videoID, Owner: actor.ID, Content: content}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperr.Persistence("failed to add comment", err)
	}
	return c, nil
}

// load fetches a comment and checks that actor owns it.
func (s *Service) load(ctx context.Context, actor *userentity.User, id snowflake.ID) (*entity.Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, apperr.Persistence("failed to load comment", err)
	}
	if err := auth.Authorize(actor, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, actor *userentity.User, id snowflake.ID, content string) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.BadRequest("comment content is required")
	}
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	c, err := s.repo.UpdateContent(ctx, id, content)
	if err != nil {
		return nil, apperr.Persistence("failed to update comment", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, actor *userentity.User, id snowflake.ID) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("comment not found")
		}
		return apperr.Persistence("failed to delete comment", err)
	}
	s.logger.Debugw("comment deleted", "comment_id", id, "owner_id", actor.ID)
	return nil
}
