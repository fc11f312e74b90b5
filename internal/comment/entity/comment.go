package entity

import (
	"time"

	"github.com/bwmarrin/snowflake"

	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

// Comment is a row of the `comments` table.
type Comment struct {
	ID        snowflake.ID `db:"id" json:"_id"`
	Video     snowflake.ID `db:"video_id" json:"video"`
	Owner     snowflake.ID `db:"owner_id" json:"owner"`
	Content   string       `db:"content" json:"content"`
	LikeCount int64        `db:"like_count" json:"likeCount"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

func (c *Comment) OwnerID() snowflake.ID {
	if c == nil {
		return 0
	}
	return c.Owner
}

// View is a comment with its author, as listed under a video.
type View struct {
	Comment
	User userentity.Summary `db:"user" json:"user"`
}
