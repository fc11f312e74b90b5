package video

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/media"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

// Repository is implemented by *repo.VideoRepo.
type Repository interface {
	Create(ctx context.Context, v *entity.Video) error
	GetByID(ctx context.Context, id snowflake.ID) (*entity.Video, error)
	GetDetail(ctx context.Context, id snowflake.ID) (*entity.Detail, error)
	List(ctx context.Context, q entity.ListQuery) ([]entity.Detail, int, error)
	Update(ctx context.Context, v *entity.Video) (*entity.Video, error)
	TogglePublished(ctx context.Context, id snowflake.ID) (*entity.Video, error)
	Delete(ctx context.Context, id snowflake.ID) error
	RecordView(ctx context.Context, videoID, viewerID snowflake.ID) error
}

type Service struct {
	repo   Repository
	ids    *utilities.IDGenerator
	media  media.Store
	logger *zap.SugaredLogger
}

func NewService(r Repository, ids *utilities.IDGenerator, store media.Store, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{repo: r, ids: ids, media: store, logger: logger}
}

// PublishInput carries the publish form; paths point at buffered temp files.
type PublishInput struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
	Duration      float64
}

func (s *Service) Publish(ctx context.Context, owner *userentity.User, in PublishInput) (*entity.Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		return nil, apperr.BadRequest("title and description are required")
	}
	if in.VideoPath == "" || in.ThumbnailPath == "" {
		return nil, apperr.BadRequest("video file and thumbnail are required")
	}
	videoAsset, err := s.media.Upload(ctx, in.VideoPath, "videos")
	if err != nil {
		return nil, apperr.Media("failed to upload video", err)
	}
	thumb, err := s.media.Upload(ctx, in.ThumbnailPath, "thumbnails")
	if err != nil {
		s.discard(ctx, videoAsset.URL)
		return nil, apperr.Media("failed to upload thumbnail", err)
	}
	duration := in.Duration
	if videoAsset.Duration != nil {
		duration = *videoAsset.Duration
	}
	v := &entity.Video{
		ID:           s.ids.Next(),
		Owner:        owner.ID,
		VideoURL:     videoAsset.URL,
		ThumbnailURL: thumb.URL,
		Title:        in.Title,
		Description:  in.Description,
		Duration:     duration,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		s.discard(ctx, videoAsset.URL)
		s.discard(ctx, thumb.URL)
		return nil, apperr.Persistence("failed to publish video", err)
	}
	s.logger.Infow("video published", "video_id", v.ID, "owner_id", owner.ID)
	return v, nil
}

// List applies the listing filters. Unpublished videos are only listed when
// the viewer filters on their own channel.
func (s *Service) List(ctx context.Context, viewer *userentity.User, q entity.ListQuery) ([]entity.Detail, int, error) {
	q.IncludeUnpublished = viewer != nil && q.OwnerID != 0 && q.OwnerID == viewer.ID
	videos, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Persistence("failed to list videos", err)
	}
	return videos, total, nil
}

// Get returns a video with its owner and counts the view. Unpublished videos
// are invisible to everyone but their owner.
func (s *Service) Get(ctx context.Context, viewer *userentity.User, id snowflake.ID) (*entity.Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Persistence("failed to load video", err)
	}
	if !d.IsPublished && auth.Authorize(viewer, &d.Video) != nil {
		return nil, apperr.NotFound("video not found")
	}
	if viewer != nil {
		if err := s.repo.RecordView(ctx, id, viewer.ID); err != nil {
			s.logger.Warnw("record view failed", "video_id", id, "viewer_id", viewer.ID, "err", err)
		} else {
			d.Views++
		}
	}
	return d, nil
}

// load fetches a video and checks that actor owns it.
func (s *Service) load(ctx context.Context, actor *userentity.User, id snowflake.ID) (*entity.Video, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, apperr.Persistence("failed to load video", err)
	}
	if err := auth.Authorize(actor, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateInput holds the optional new values; empty fields are kept.
type UpdateInput struct {
	Title         string
	Description   string
	ThumbnailPath string
}

func (s *Service) Update(ctx context.Context, actor *userentity.User, id snowflake.ID, in UpdateInput) (*entity.Video, error) {
	v, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		v.Title = t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		v.Description = d
	}
	oldThumb := ""
	if in.ThumbnailPath != "" {
		thumb, err := s.media.Upload(ctx, in.ThumbnailPath, "thumbnails")
		if err != nil {
			return nil, apperr.Media("failed to upload thumbnail", err)
		}
		oldThumb, v.ThumbnailURL = v.ThumbnailURL, thumb.URL
	}
	updated, err := s.repo.Update(ctx, v)
	if err != nil {
		if oldThumb != "" {
			s.discard(ctx, v.ThumbnailURL)
		}
		return nil, apperr.Persistence("failed to update video", err)
	}
	s.discard(ctx, oldThumb)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor *userentity.User, id snowflake.ID) error {
	v, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("video not found")
		}
		return apperr.Persistence("failed to delete video", err)
	}
	s.discard(ctx, v.VideoURL)
	s.discard(ctx, v.ThumbnailURL)
	s.logger.Infow("video deleted", "video_id", id, "owner_id", actor.ID)
	return nil
}

func (s *Service) TogglePublish(ctx context.Context, actor *userentity.User, id snowflake.ID) (*entity.Video, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	v, err := s.repo.TogglePublished(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("failed to toggle publish status", err)
	}
	return v, nil
}

func (s *Service) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if _, err := s.media.Delete(ctx, url); err != nil {
		s.logger.Warnw("media cleanup failed", "url", url, "err", err)
	}
}
