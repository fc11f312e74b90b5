package repo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(sqlx.NewDb(db, "postgres")), mock
}

func TestGetByIDProjectsOutSecrets(t *testing.T) {
	r, mock := newRepoWithMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "full_name", "avatar", "cover_image", "subscriber_count", "created_at", "updated_at"}).
		AddRow(int64(7), "alice", "alice@example.com", "Alice", "a.png", "", 3, now, now)
	mock.ExpectQuery(`^SELECT id, username, email, full_name, avatar, cover_image, subscriber_count, created_at, updated_at FROM users WHERE id=\$1$`).
		WithArgs(snowflake.ID(7)).
		WillReturnRows(rows)

	u, err := r.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(7), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Empty(t, u.PasswordHash)
	assert.Nil(t, u.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM users WHERE id=\$1`).
		WithArgs(snowflake.ID(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := r.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStoredRefreshToken(t *testing.T) {
	r, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT refresh_token FROM users WHERE id=\$1$`).
		WithArgs(snowflake.ID(1)).
		WillReturnRows(sqlmock.NewRows([]string{"refresh_token"}).AddRow("tok"))
	got, err := r.StoredRefreshToken(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok", *got)

	mock.ExpectQuery(`^SELECT refresh_token FROM users WHERE id=\$1$`).
		WithArgs(snowflake.ID(1)).
		WillReturnRows(sqlmock.NewRows([]string{"refresh_token"}).AddRow(nil))
	got, err = r.StoredRefreshToken(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetRefreshToken(t *testing.T) {
	r, mock := newRepoWithMock(t)
	token := "new-token"

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET refresh_token=$2, updated_at=NOW() WHERE id=$1`)).
		WithArgs(snowflake.ID(5), &token).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, r.SetRefreshToken(context.Background(), 5, &token))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET refresh_token=$2`)).
		WithArgs(snowflake.ID(6), nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := r.SetRefreshToken(context.Background(), 6, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByUsernameOrEmail(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE username=\$1 OR email=\$2\)`).
		WithArgs("bob", "bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := r.ExistsByUsernameOrEmail(context.Background(), "bob", "bob@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChannelProfile(t *testing.T) {
	r, mock := newRepoWithMock(t)
	rows := sqlmock.NewRows([]string{"id", "username", "full_name", "email", "avatar", "cover_image",
		"subscribers_count", "channels_subscribed_to_count", "is_subscribed"}).
		AddRow(int64(3), "carol", "Carol", "c@example.com", "c.png", "cover.png", 10, 2, true)
	mock.ExpectQuery(`FROM users u WHERE u.username=\$1`).
		WithArgs("carol", snowflake.ID(4)).
		WillReturnRows(rows)

	p, err := r.ChannelProfile(context.Background(), "carol", 4)
	require.NoError(t, err)
	assert.Equal(t, 10, p.SubscribersCount)
	assert.Equal(t, 2, p.ChannelsSubscribedToCount)
	assert.True(t, p.IsSubscribed)
}

func TestWatchHistoryMapsOwner(t *testing.T) {
	r, mock := newRepoWithMock(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"video_id", "title", "description", "video_url", "thumbnail_url",
		"duration", "views", "watched_at", "owner.id", "owner.username", "owner.full_name", "owner.avatar"}).
		AddRow(int64(11), "t", "d", "v.mp4", "t.png", 12.5, int64(4), now, int64(2), "dave", "Dave", "d.png")
	mock.ExpectQuery(`FROM watch_history h`).
		WithArgs(snowflake.ID(1)).
		WillReturnRows(rows)

	got, err := r.WatchHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, snowflake.ID(2), got[0].Owner.ID)
	assert.Equal(t, "dave", got[0].Owner.Username)
}
