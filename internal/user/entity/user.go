package entity

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an account row in the `users` table. PasswordHash and RefreshToken are
// only populated by the queries that need them and never serialised.
type User struct {
	ID              snowflake.ID `db:"id" json:"_id"`
	Username        string       `db:"username" json:"username"`
	Email           string       `db:"email" json:"email"`
	FullName        string       `db:"full_name" json:"fullName"`
	Avatar          string       `db:"avatar" json:"avatar"`
	CoverImage      string       `db:"cover_image" json:"coverImage"`
	PasswordHash    string       `db:"password_hash" json:"-"`
	RefreshToken    *string      `db:"refresh_token" json:"-"`
	SubscriberCount int          `db:"subscriber_count" json:"subscriberCount"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}

// Summary is the owner projection embedded in videos, comments, tweets and subscriptions.
type Summary struct {
	ID       snowflake.ID `db:"id" json:"_id"`
	Username string       `db:"username" json:"username"`
	FullName string       `db:"full_name" json:"fullName"`
	Avatar   string       `db:"avatar" json:"avatar"`
}

// ChannelProfile is the public view of a user's channel as seen by a viewer.
type ChannelProfile struct {
	ID                        snowflake.ID `db:"id" json:"_id"`
	Username                  string       `db:"username" json:"username"`
	FullName                  string       `db:"full_name" json:"fullName"`
	Email                     string       `db:"email" json:"email"`
	Avatar                    string       `db:"avatar" json:"avatar"`
	CoverImage                string       `db:"cover_image" json:"coverImage"`
	SubscribersCount          int          `db:"subscribers_count" json:"subscribersCount"`
	ChannelsSubscribedToCount int          `db:"channels_subscribed_to_count" json:"channelsSubscribedToCount"`
	IsSubscribed              bool         `db:"is_subscribed" json:"isSubscribed"`
}

// HistoryEntry is one watched video with its owner.
type HistoryEntry struct {
	VideoID      snowflake.ID `db:"video_id" json:"_id"`
	Title        string       `db:"title" json:"title"`
	Description  string       `db:"description" json:"description"`
	VideoURL     string       `db:"video_url" json:"videoFile"`
	ThumbnailURL string       `db:"thumbnail_url" json:"thumbnail"`
	Duration     float64      `db:"duration" json:"duration"`
	Views        int64        `db:"views" json:"views"`
	WatchedAt    time.Time    `db:"watched_at" json:"watchedAt"`
	Owner        Summary      `db:"owner" json:"owner"`
}
