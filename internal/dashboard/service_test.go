package dashboard

import (
	"context"
	"database/sql"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/dashboard/entity"
	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

type stubRepo struct {
	includeUnpublished bool
}

func (s *stubRepo) Stats(context.Context, snowflake.ID) (*entity.Stats, error) {
	return &entity.Stats{TotalVideos: 2}, nil
}

func (s *stubRepo) Videos(_ context.Context, _ snowflake.ID, includeUnpublished bool) ([]entity.VideoStat, error) {
	s.includeUnpublished = includeUnpublished
	return []entity.VideoStat{}, nil
}

type memoryUsers map[snowflake.ID]*userentity.User

func (m memoryUsers) GetByID(_ context.Context, id snowflake.ID) (*userentity.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func TestDashboard(t *testing.T) {
	alice := &userentity.User{ID: 1}
	bob := &userentity.User{ID: 2}
	repo := &stubRepo{}
	svc := NewService(repo, memoryUsers{1: alice, 2: bob}, nil)
	ctx := context.Background()

	st, err := svc.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalVideos)

	_, err = svc.Stats(ctx, 9)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Videos(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.True(t, repo.includeUnpublished)

	_, err = svc.Videos(ctx, bob, alice.ID)
	require.NoError(t, err)
	assert.False(t, repo.includeUnpublished)
}
