package entity

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Stats aggregates a channel's totals.
type Stats struct {
	TotalVideos      int64 `db:"total_videos" json:"totalVideos"`
	TotalViews       int64 `db:"total_views" json:"totalViews"`
	TotalSubscribers int64 `db:"total_subscribers" json:"totalSubscribers"`
	TotalLikes       int64 `db:"total_likes" json:"totalLikes"`
}

// VideoStat is one row of the channel's video table.
type VideoStat struct {
	ID          snowflake.ID `db:"id" json:"_id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Thumbnail   string       `db:"thumbnail_url" json:"thumbnail"`
	Views       int64        `db:"views" json:"views"`
	Likes       int64        `db:"like_count" json:"likes"`
	IsPublished bool         `db:"is_published" json:"isPublished"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
}
