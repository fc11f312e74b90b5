package entity

import (
	"time"

	"github.com/bwmarrin/snowflake"

	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

// Video is a row of the `videos` table.
type Video struct {
	ID           snowflake.ID `db:"id" json:"_id"`
	Owner        snowflake.ID `db:"owner_id" json:"owner"`
	VideoURL     string       `db:"video_url" json:"videoFile"`
	ThumbnailURL string       `db:"thumbnail_url" json:"thumbnail"`
	Title        string       `db:"title" json:"title"`
	Description  string       `db:"description" json:"description"`
	Duration     float64      `db:"duration" json:"duration"`
	Views        int64        `db:"views" json:"views"`
	LikeCount    int64        `db:"like_count" json:"likeCount"`
	IsPublished  bool         `db:"is_published" json:"isPublished"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

func (v *Video) OwnerID() snowflake.ID {
	if v == nil {
		return 0
	}
	return v.Owner
}

// Detail is a video joined with its owner's public summary.
type Detail struct {
	Video
	OwnerDetails userentity.Summary `db:"owner_details" json:"ownerDetails"`
}

// ListQuery filters and orders the public video listing.
type ListQuery struct {
	Page               int
	Limit              int
	Query              string
	SortBy             string
	SortType           string
	OwnerID            snowflake.ID
	IncludeUnpublished bool
}
