package repo

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bwmarrin/snowflake"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/like/entity"
)

func newRepoWithMock(t *testing.T) (*LikeRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLikeRepo(sqlx.NewDb(db, "postgres")), mock
}

func TestAddLikeOnTweet(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (id, liked_by, tweet_id) VALUES ($1, $2, $3)`)).
		WithArgs(snowflake.ID(5), snowflake.ID(1), snowflake.ID(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE tweets SET like_count = like_count + 1 WHERE id=$1 RETURNING like_count`)).
		WithArgs(snowflake.ID(7)).
		WillReturnRows(sqlmock.NewRows([]string{"like_count"}).AddRow(int64(3)))
	mock.ExpectCommit()

	count, err := r.Add(context.Background(), entity.TargetTweet, 5, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveLikeOnComment(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE id=$1`)).
		WithArgs(snowflake.ID(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE comments SET like_count = GREATEST(like_count - 1, 0)`)).
		WithArgs(snowflake.ID(9)).
		WillReturnRows(sqlmock.NewRows([]string{"like_count"}).AddRow(int64(0)))
	mock.ExpectCommit()

	count, err := r.Remove(context.Background(), entity.TargetComment, 5, 9)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnknownTarget(t *testing.T) {
	r, _ := newRepoWithMock(t)
	_, err := r.TargetExists(context.Background(), entity.Target(42), 1, 1)
	assert.ErrorIs(t, err, errUnknownTarget)
}

func TestTargetExistsScopesVideosToViewer(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM videos WHERE id=$1 AND (is_published OR owner_id = $2)`)).
		WithArgs(snowflake.ID(10), snowflake.ID(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`JOIN videos v ON v.id = c.video_id`)).
		WithArgs(snowflake.ID(20), snowflake.ID(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := r.TargetExists(context.Background(), entity.TargetVideo, 10, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = r.TargetExists(context.Background(), entity.TargetComment, 20, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTargetExistsTweetIgnoresViewer(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM tweets WHERE id=$1)`)).
		WithArgs(snowflake.ID(30)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := r.TargetExists(context.Background(), entity.TargetTweet, 30, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUsesTargetColumn(t *testing.T) {
	r, mock := newRepoWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM likes WHERE video_id=$1 AND liked_by=$2`)).
		WithArgs(snowflake.ID(10), snowflake.ID(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "liked_by", "created_at"}))

	_, err := r.Find(context.Background(), entity.TargetVideo, 10, 1)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
