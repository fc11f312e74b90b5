package entity

import (
	"time"

	"github.com/bwmarrin/snowflake"

	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

// Subscription links a subscriber to a channel; the subscriber owns it.
type Subscription struct {
	ID         snowflake.ID `db:"id" json:"_id"`
	Subscriber snowflake.ID `db:"subscriber_id" json:"subscriber"`
	Channel    snowflake.ID `db:"channel_id" json:"channel"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

func (s *Subscription) OwnerID() snowflake.ID {
	if s == nil {
		return 0
	}
	return s.Subscriber
}

// Entry is the other side of a subscription: the subscriber when listing a
// channel's audience, the channel when listing what a user follows.
type Entry struct {
	ID           snowflake.ID       `db:"id" json:"_id"`
	SubscribedAt time.Time          `db:"created_at" json:"subscribedAt"`
	User         userentity.Summary `db:"user" json:"user"`
}

// Toggle is the outcome of a subscribe/unsubscribe toggle.
type Toggle struct {
	Subscribed      bool         `json:"subscribed"`
	Subscriber      snowflake.ID `json:"subscriber"`
	Channel         snowflake.ID `json:"channel"`
	SubscriberCount int64        `json:"subscriberCount"`
}
