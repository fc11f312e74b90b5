package repo

import (
	"context"
	"database/sql"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/comment/entity"
)

const columns = `id, video_id, owner_id, content, like_count, created_at, updated_at`

type CommentRepo struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) Create(ctx context.Context, c *entity.Comment) error {
	const q = `INSERT INTO comments (id, video_id, owner_id, content) VALUES ($1, $2, $3, $4)
		RETURNING like_count, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, c.ID, c.Video, c.Owner, c.Content).
		Scan(&c.LikeCount, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CommentRepo) GetByID(ctx context.Context, id snowflake.ID) (*entity.Comment, error) {
	var c entity.Comment
	if err := r.db.GetContext(ctx, &c, `SELECT `+columns+` FROM comments WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByVideo returns one page of comments, newest first, and the total count.
func (r *CommentRepo) ListByVideo(ctx context.Context, videoID snowflake.ID, limit, offset int) ([]entity.View, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments WHERE video_id=$1`, videoID); err != nil {
		return nil, 0, err
	}
	const q = `SELECT c.id, c.video_id, c.owner_id, c.content, c.like_count, c.created_at, c.updated_at,
		u.id AS "user.id", u.username AS "user.username", u.full_name AS "user.full_name", u.avatar AS "user.avatar"
		FROM comments c JOIN users u ON u.id = c.owner_id
		WHERE c.video_id=$1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`
	out := []entity.View{}
	if err := r.db.SelectContext(ctx, &out, q, videoID, limit, offset); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CommentRepo) UpdateContent(ctx context.Context, id snowflake.ID, content string) (*entity.Comment, error) {
	q := `UPDATE comments SET content=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + columns
	var c entity.Comment
	if err := r.db.GetContext(ctx, &c, q, id, content); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepo) Delete(ctx context.Context, id snowflake.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id=$1`, id)
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
