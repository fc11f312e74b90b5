package entity

import (
	"time"

	"github.com/bwmarrin/snowflake"

	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

// Tweet is a short text post on a channel, optionally pointing at an image or video URL.
type Tweet struct {
	ID        snowflake.ID `db:"id" json:"_id"`
	Owner     snowflake.ID `db:"owner_id" json:"owner"`
	Content   string       `db:"content" json:"content"`
	Photo     *string      `db:"photo" json:"photo,omitempty"`
	Video     *string      `db:"video" json:"video,omitempty"`
	LikeCount int64        `db:"like_count" json:"likeCount"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

func (t *Tweet) OwnerID() snowflake.ID {
	if t == nil {
		return 0
	}
	return t.Owner
}

type View struct {
	Tweet
	OwnerDetails userentity.Summary `db:"owner_details" json:"ownerDetails"`
}
