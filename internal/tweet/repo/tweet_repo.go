package repo

import (
	"context"
	"database/sql"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/tweet/entity"
)

const columns = `id, owner_id, content, photo, video, like_count, created_at, updated_at`

type TweetRepo struct {
	db *sqlx.DB
}

func NewTweetRepo(db *sqlx.DB) *TweetRepo { return &TweetRepo{db: db} }

func (r *TweetRepo) Create(ctx context.Context, t *entity.Tweet) error {
	const q = `INSERT INTO tweets (id, owner_id, content, photo, video) VALUES ($1, $2, $3, $4, $5)
		RETURNING like_count, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, t.ID, t.Owner, t.Content, t.Photo, t.Video).
		Scan(&t.LikeCount, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TweetRepo) GetByID(ctx context.Context, id snowflake.ID) (*entity.Tweet, error) {
	var t entity.Tweet
	if err := r.db.GetContext(ctx, &t, `SELECT `+columns+` FROM tweets WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByOwner returns ownerID's tweets, newest first.
func (r *TweetRepo) ListByOwner(ctx context.Context, ownerID snowflake.ID) ([]entity.View, error) {
	const q = `SELECT t.id, t.owner_id, t.content, t.photo, t.video, t.like_count, t.created_at, t.updated_at,
		o.id AS "owner_details.id", o.username AS "owner_details.username",
		o.full_name AS "owner_details.full_name", o.avatar AS "owner_details.avatar"
		FROM tweets t JOIN users o ON o.id = t.owner_id
		WHERE t.owner_id=$1
		ORDER BY t.created_at DESC, t.id DESC`
	out := []entity.View{}
	if err := r.db.SelectContext(ctx, &out, q, ownerID); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces content and media references.
func (r *TweetRepo) Update(ctx context.Context, t *entity.Tweet) (*entity.Tweet, error) {
	q := `UPDATE tweets SET content=$2, photo=$3, video=$4, updated_at=NOW() WHERE id=$1 RETURNING ` + columns
	var out entity.Tweet
	if err := r.db.GetContext(ctx, &out, q, t.ID, t.Content, t.Photo, t.Video); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the tweet; its likes go with it through ON DELETE CASCADE.
func (r *TweetRepo) Delete(ctx context.Context, id snowflake.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tweets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
