package repo

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/subscription/entity"
)

type SubscriptionRepo struct {
	db *sqlx.DB
}

func NewSubscriptionRepo(db *sqlx.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Find returns the subscription of subscriberID to channelID or sql.ErrNoRows.
func (r *SubscriptionRepo) Find(ctx context.Context, subscriberID, channelID snowflake.ID) (*entity.Subscription, error) {
	var s entity.Subscription
	const q = `SELECT id, subscriber_id, channel_id, created_at FROM subscriptions WHERE subscriber_id=$1 AND channel_id=$2`
	if err := r.db.GetContext(ctx, &s, q, subscriberID, channelID); err != nil {
		return nil, err
	}
	return &s, nil
}

// Add inserts the subscription and bumps the channel's subscriber_count.
func (r *SubscriptionRepo) Add(ctx context.Context, s *entity.Subscription) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	const ins = `INSERT INTO subscriptions (id, subscriber_id, channel_id) VALUES ($1, $2, $3) RETURNING created_at`
	if err := tx.QueryRowxContext(ctx, ins, s.ID, s.Subscriber, s.Channel).Scan(&s.CreatedAt); err != nil {
		return 0, err
	}
	var count int64
	const upd = `UPDATE users SET subscriber_count = subscriber_count + 1 WHERE id=$1 RETURNING subscriber_count`
	if err := tx.GetContext(ctx, &count, upd, s.Channel); err != nil {
		return 0, err
	}
	return count, tx.Commit()
}

// Remove deletes the subscription and decrements the channel's subscriber_count, never below zero.
func (r *SubscriptionRepo) Remove(ctx context.Context, s *entity.Subscription) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM subscriptions WHERE id=$1`, s.ID); err != nil {
		return 0, err
	}
	var count int64
	const upd = `UPDATE users SET subscriber_count = GREATEST(subscriber_count - 1, 0) WHERE id=$1 RETURNING subscriber_count`
	if err := tx.GetContext(ctx, &count, upd, s.Channel); err != nil {
		return 0, err
	}
	return count, tx.Commit()
}

// Subscribers lists who follows channelID, most recent first.
func (r *SubscriptionRepo) Subscribers(ctx context.Context, channelID snowflake.ID) ([]entity.Entry, error) {
	const q = `SELECT s.id, s.created_at,
		u.id AS "user.id", u.username AS "user.username", u.full_name AS "user.full_name", u.avatar AS "user.avatar"
		FROM subscriptions s JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id=$1
		ORDER BY s.created_at DESC, s.id DESC`
	out := []entity.Entry{}
	if err := r.db.SelectContext(ctx, &out, q, channelID); err != nil {
		return nil, err
	}
	return out, nil
}

// Channels lists the channels subscriberID follows, most recent first.
func (r *SubscriptionRepo) Channels(ctx context.Context, subscriberID snowflake.ID) ([]entity.Entry, error) {
	const q = `SELECT s.id, s.created_at,
		u.id AS "user.id", u.username AS "user.username", u.full_name AS "user.full_name", u.avatar AS "user.avatar"
		FROM subscriptions s JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id=$1
		ORDER BY s.created_at DESC, s.id DESC`
	out := []entity.Entry{}
	if err := r.db.SelectContext(ctx, &out, q, subscriberID); err != nil {
		return nil, err
	}
	return out, nil
}
