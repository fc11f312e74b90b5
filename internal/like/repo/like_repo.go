package repo

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/like/entity"
	videoentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video/entity"
)

var errUnknownTarget = errors.New("unknown like target")

type target struct {
	table, column string
	// visible checks that $1 exists and is visible to viewer $2 when the
	// target hangs off a video; scoped is false when it takes no viewer.
	visible string
	scoped  bool
}

// table and likes column per target; both are fixed identifiers, never user input.
var targets = map[entity.Target]target{
	entity.TargetVideo: {
		table: "videos", column: "video_id", scoped: true,
		visible: `SELECT EXISTS(SELECT 1 FROM videos WHERE id=$1 AND (is_published OR owner_id = $2))`,
	},
	entity.TargetComment: {
		table: "comments", column: "comment_id", scoped: true,
		visible: `SELECT EXISTS(SELECT 1 FROM comments c JOIN videos v ON v.id = c.video_id
			WHERE c.id=$1 AND (v.is_published OR v.owner_id = $2))`,
	},
	entity.TargetTweet: {
		table: "tweets", column: "tweet_id",
		visible: `SELECT EXISTS(SELECT 1 FROM tweets WHERE id=$1)`,
	},
}

type LikeRepo struct {
	db *sqlx.DB
}

func NewLikeRepo(db *sqlx.DB) *LikeRepo { return &LikeRepo{db: db} }

// TargetExists reports whether the liked record exists and viewerID may see it.
// Videos, and comments under them, are hidden while unpublished unless viewerID owns the video.
func (r *LikeRepo) TargetExists(ctx context.Context, t entity.Target, id, viewerID snowflake.ID) (bool, error) {
	tg, ok := targets[t]
	if !ok {
		return false, errUnknownTarget
	}
	args := []any{id}
	if tg.scoped {
		args = append(args, viewerID)
	}
	var exists bool
	err := r.db.GetContext(ctx, &exists, tg.visible, args...)
	return exists, err
}

// Find returns userID's like on the target or sql.ErrNoRows.
func (r *LikeRepo) Find(ctx context.Context, t entity.Target, targetID, userID snowflake.ID) (*entity.Like, error) {
	tg, ok := targets[t]
	if !ok {
		return nil, errUnknownTarget
	}
	var l entity.Like
	q := `SELECT id, liked_by, created_at FROM likes WHERE ` + tg.column + `=$1 AND liked_by=$2`
	if err := r.db.GetContext(ctx, &l, q, targetID, userID); err != nil {
		return nil, err
	}
	return &l, nil
}

// Add inserts a like and bumps the target's like_count in one transaction.
func (r *LikeRepo) Add(ctx context.Context, t entity.Target, id, targetID, userID snowflake.ID) (int64, error) {
	tg, ok := targets[t]
	if !ok {
		return 0, errUnknownTarget
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	q := `INSERT INTO likes (id, liked_by, ` + tg.column + `) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, q, id, userID, targetID); err != nil {
		return 0, err
	}
	var count int64
	if err := tx.GetContext(ctx, &count,
		`UPDATE `+tg.table+` SET like_count = like_count + 1 WHERE id=$1 RETURNING like_count`, targetID); err != nil {
		return 0, err
	}
	return count, tx.Commit()
}

// Remove deletes a like and decrements the target's like_count, never below zero.
func (r *LikeRepo) Remove(ctx context.Context, t entity.Target, likeID, targetID snowflake.ID) (int64, error) {
	tg, ok := targets[t]
	if !ok {
		return 0, errUnknownTarget
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE id=$1`, likeID); err != nil {
		return 0, err
	}
	var count int64
	if err := tx.GetContext(ctx, &count,
		`UPDATE `+tg.table+` SET like_count = GREATEST(like_count - 1, 0) WHERE id=$1 RETURNING like_count`, targetID); err != nil {
		return 0, err
	}
	return count, tx.Commit()
}

// LikedVideos lists the videos userID liked, most recent like first.
func (r *LikeRepo) LikedVideos(ctx context.Context, userID snowflake.ID) ([]videoentity.Detail, error) {
	const q = `SELECT v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description, v.duration,
		v.views, v.like_count, v.is_published, v.created_at, v.updated_at,
		o.id AS "owner_details.id", o.username AS "owner_details.username",
		o.full_name AS "owner_details.full_name", o.avatar AS "owner_details.avatar"
		FROM likes l
		JOIN videos v ON v.id = l.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE l.liked_by=$1 AND (v.is_published OR v.owner_id = $1)
		ORDER BY l.created_at DESC`
	out := []videoentity.Detail{}
	if err := r.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, err
	}
	return out, nil
}
