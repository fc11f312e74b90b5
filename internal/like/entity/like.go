package entity

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Target is the kind of record a like points at.
type Target int

const (
	TargetVideo Target = iota + 1
	TargetComment
	TargetTweet
)

func (t Target) String() string {
	switch t {
	case TargetVideo:
		return "video"
	case TargetComment:
		return "comment"
	case TargetTweet:
		return "tweet"
	}
	return "unknown"
}

// Like is a row of the `likes` table; exactly one target column is set.
type Like struct {
	ID        snowflake.ID `db:"id" json:"_id"`
	LikedBy   snowflake.ID `db:"liked_by" json:"likedBy"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

func (l *Like) OwnerID() snowflake.ID {
	if l == nil {
		return 0
	}
	return l.LikedBy
}

// Toggle is the outcome of a like toggle.
type Toggle struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}
