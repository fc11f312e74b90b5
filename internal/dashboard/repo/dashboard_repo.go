package repo

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/dashboard/entity"
)

type DashboardRepo struct {
	db *sqlx.DB
}

func NewDashboardRepo(db *sqlx.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// Stats computes the channel totals in one round trip. Likes are counted over
// the channel's videos.
func (r *DashboardRepo) Stats(ctx context.Context, channelID snowflake.ID) (*entity.Stats, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM videos WHERE owner_id=$1) AS total_videos,
		(SELECT COALESCE(SUM(views), 0) FROM videos WHERE owner_id=$1) AS total_views,
		(SELECT COUNT(*) FROM subscriptions WHERE channel_id=$1) AS total_subscribers,
		(SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.video_id WHERE v.owner_id=$1) AS total_likes`
	var s entity.Stats
	if err := r.db.GetContext(ctx, &s, q, channelID); err != nil {
		return nil, err
	}
	return &s, nil
}

// Videos lists the channel's videos newest first; unpublished ones only when
// includeUnpublished is set.
func (r *DashboardRepo) Videos(ctx context.Context, channelID snowflake.ID, includeUnpublished bool) ([]entity.VideoStat, error) {
	const q = `SELECT id, title, description, thumbnail_url, views, like_count, is_published, created_at
		FROM videos
		WHERE owner_id=$1 AND (is_published OR $2)
		ORDER BY created_at DESC, id DESC`
	out := []entity.VideoStat{}
	if err := r.db.SelectContext(ctx, &out, q, channelID, includeUnpublished); err != nil {
		return nil, err
	}
	return out, nil
}
