package repo

import (
	"context"
	"database/sql"

	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

// publicColumns never include password_hash or refresh_token.
const publicColumns = `id, username, email, full_name, avatar, cover_image, subscriber_count, created_at, updated_at`

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row. The caller assigns the id and hashes the password.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, username, email, full_name, avatar, cover_image, password_hash)
		VALUES (:id, :username, :email, :full_name, :avatar, :cover_image, :password_hash)
		RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, u)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&u.CreatedAt, &u.UpdatedAt)
	}
	return rows.Err()
}

// ExistsByUsernameOrEmail reports whether either value is already taken.
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1 OR email=$2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, username, email); err != nil {
		return false, err
	}
	return exists, nil
}

// GetByID returns the public projection of a user or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id snowflake.ID) (*entity.User, error) {
	q := `SELECT ` + publicColumns + ` FROM users WHERE id=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsernameOrEmail returns the full row including password_hash for login.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	const q = `SELECT id, username, email, full_name, avatar, cover_image, password_hash,
		subscriber_count, created_at, updated_at
		FROM users WHERE username=$1 OR email=$2 LIMIT 1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, username, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetPasswordHash fetches only the stored hash.
func (r *UserRepo) GetPasswordHash(ctx context.Context, id snowflake.ID) (string, error) {
	var hash string
	if err := r.db.GetContext(ctx, &hash, `SELECT password_hash FROM users WHERE id=$1`, id); err != nil {
		return "", err
	}
	return hash, nil
}

// StoredRefreshToken returns the refresh token currently stored for the user (nil when cleared).
func (r *UserRepo) StoredRefreshToken(ctx context.Context, id snowflake.ID) (*string, error) {
	var token sql.NullString
	if err := r.db.GetContext(ctx, &token, `SELECT refresh_token FROM users WHERE id=$1`, id); err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, nil
	}
	return &token.String, nil
}

// SetRefreshToken overwrites the stored refresh token; nil clears it.
// Returns sql.ErrNoRows when the user does not exist.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id snowflake.ID, token *string) error {
	const q = `UPDATE users SET refresh_token=$2, updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, token)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// UpdatePassword stores a new hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id snowflake.ID, hash string) error {
	const q = `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, hash)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// UpdateDetails sets full name and email and returns the updated public row.
func (r *UserRepo) UpdateDetails(ctx context.Context, id snowflake.ID, fullName, email string) (*entity.User, error) {
	q := `UPDATE users SET full_name=$2, email=$3, updated_at=NOW() WHERE id=$1 RETURNING ` + publicColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id, fullName, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateAvatar sets the avatar URL and returns the updated public row.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id snowflake.ID, url string) (*entity.User, error) {
	q := `UPDATE users SET avatar=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + publicColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id, url); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateCoverImage sets the cover image URL and returns the updated public row.
func (r *UserRepo) UpdateCoverImage(ctx context.Context, id snowflake.ID, url string) (*entity.User, error) {
	q := `UPDATE users SET cover_image=$2, updated_at=NOW() WHERE id=$1 RETURNING ` + publicColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id, url); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChannelProfile joins subscription counts for the channel identified by username.
func (r *UserRepo) ChannelProfile(ctx context.Context, username string, viewerID snowflake.ID) (*entity.ChannelProfile, error) {
	const q = `SELECT u.id, u.username, u.full_name, u.email, u.avatar, u.cover_image,
		(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers_count,
		(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS channels_subscribed_to_count,
		EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2) AS is_subscribed
		FROM users u WHERE u.username=$1`
	var p entity.ChannelProfile
	if err := r.db.GetContext(ctx, &p, q, username, viewerID); err != nil {
		return nil, err
	}
	return &p, nil
}

// WatchHistory lists watched videos, most recent first.
func (r *UserRepo) WatchHistory(ctx context.Context, userID snowflake.ID) ([]entity.HistoryEntry, error) {
	const q = `SELECT v.id AS video_id, v.title, v.description, v.video_url, v.thumbnail_url,
		v.duration, v.views, h.watched_at,
		o.id AS "owner.id", o.username AS "owner.username", o.full_name AS "owner.full_name", o.avatar AS "owner.avatar"
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE h.user_id=$1
		ORDER BY h.watched_at DESC`
	out := []entity.HistoryEntry{}
	if err := r.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
