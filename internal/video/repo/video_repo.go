package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video/entity"
)

const columns = `id, owner_id, video_url, thumbnail_url, title, description, duration, views,
	like_count, is_published, created_at, updated_at`

const detailColumns = `v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description, v.duration,
	v.views, v.like_count, v.is_published, v.created_at, v.updated_at,
	o.id AS "owner_details.id", o.username AS "owner_details.username",
	o.full_name AS "owner_details.full_name", o.avatar AS "owner_details.avatar"`

var sortColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "v.title",
}

type VideoRepo struct {
	db *sqlx.DB
}

func NewVideoRepo(db *sqlx.DB) *VideoRepo { return &VideoRepo{db: db} }

// Create inserts v and fills in the columns the database defaults.
func (r *VideoRepo) Create(ctx context.Context, v *entity.Video) error {
	const q = `INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING views, like_count, is_published, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, v.ID, v.Owner, v.VideoURL, v.ThumbnailURL, v.Title, v.Description, v.Duration).
		Scan(&v.Views, &v.LikeCount, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
}

func (r *VideoRepo) GetByID(ctx context.Context, id snowflake.ID) (*entity.Video, error) {
	var v entity.Video
	if err := r.db.GetContext(ctx, &v, `SELECT `+columns+` FROM videos WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// Visible reports whether viewerID may see the video: it is published or viewerID owns it.
func (r *VideoRepo) Visible(ctx context.Context, id, viewerID snowflake.ID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok,
		`SELECT EXISTS(SELECT 1 FROM videos WHERE id=$1 AND (is_published OR owner_id = $2))`, id, viewerID)
	return ok, err
}

func (r *VideoRepo) GetDetail(ctx context.Context, id snowflake.ID) (*entity.Detail, error) {
	q := `SELECT ` + detailColumns + ` FROM videos v JOIN users o ON o.id = v.owner_id WHERE v.id=$1`
	var d entity.Detail
	if err := r.db.GetContext(ctx, &d, q, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns one page of videos matching q and the total number of matches.
func (r *VideoRepo) List(ctx context.Context, q entity.ListQuery) ([]entity.Detail, int, error) {
	var where []string
	var args []any
	if q.Query != "" {
		args = append(args, "%"+escapeLike(q.Query)+"%")
		where = append(where, fmt.Sprintf(`v.title ILIKE $%d`, len(args)))
	}
	if q.OwnerID != 0 {
		args = append(args, q.OwnerID)
		where = append(where, fmt.Sprintf(`v.owner_id = $%d`, len(args)))
	}
	if !q.IncludeUnpublished {
		where = append(where, `v.is_published`)
	}
	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM videos v`+filter, args...); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = sortColumns["createdAt"]
	}
	dir := "DESC"
	if strings.EqualFold(q.SortType, "asc") {
		dir = "ASC"
	}
	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	query := `SELECT ` + detailColumns + ` FROM videos v JOIN users o ON o.id = v.owner_id` + filter +
		fmt.Sprintf(` ORDER BY %s %s, v.id %s LIMIT $%d OFFSET $%d`, col, dir, dir, len(args)-1, len(args))
	out := []entity.Detail{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update sets title, description and thumbnail and returns the updated row.
func (r *VideoRepo) Update(ctx context.Context, v *entity.Video) (*entity.Video, error) {
	q := `UPDATE videos SET title=$2, description=$3, thumbnail_url=$4, updated_at=NOW() WHERE id=$1 RETURNING ` + columns
	var out entity.Video
	if err := r.db.GetContext(ctx, &out, q, v.ID, v.Title, v.Description, v.ThumbnailURL); err != nil {
		return nil, err
	}
	return &out, nil
}

// TogglePublished flips is_published and returns the updated row.
func (r *VideoRepo) TogglePublished(ctx context.Context, id snowflake.ID) (*entity.Video, error) {
	q := `UPDATE videos SET is_published = NOT is_published, updated_at=NOW() WHERE id=$1 RETURNING ` + columns
	var out entity.Video
	if err := r.db.GetContext(ctx, &out, q, id); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the video; comments, likes and history rows cascade.
func (r *VideoRepo) Delete(ctx context.Context, id snowflake.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id=$1`, id)
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

// RecordView bumps the view counter and moves the video to the top of the
// viewer's history in one transaction.
func (r *VideoRepo) RecordView(ctx context.Context, videoID, viewerID snowflake.ID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id=$1`, videoID); err != nil {
		return err
	}
	const history = `INSERT INTO watch_history (user_id, video_id, watched_at) VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at`
	if _, err := tx.ExecContext(ctx, history, viewerID, videoID); err != nil {
		return err
	}
	return tx.Commit()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
