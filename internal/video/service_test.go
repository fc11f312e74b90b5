package video

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	userentity "github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/media"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

type memoryRepo struct {
	videos map[snowflake.ID]*entity.Video
	views  map[snowflake.ID][]snowflake.ID
	lastQ  entity.ListQuery
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{videos: map[snowflake.ID]*entity.Video{}, views: map[snowflake.ID][]snowflake.ID{}}
}

func (m *memoryRepo) Create(_ context.Context, v *entity.Video) error {
	v.IsPublished = true
	cp := *v
	m.videos[v.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id snowflake.ID) (*entity.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *v
	return &cp, nil
}

func (m *memoryRepo) GetDetail(ctx context.Context, id snowflake.ID) (*entity.Detail, error) {
	v, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.Detail{Video: *v, OwnerDetails: userentity.Summary{ID: v.Owner}}, nil
}

func (m *memoryRepo) List(_ context.Context, q entity.ListQuery) ([]entity.Detail, int, error) {
	m.lastQ = q
	return []entity.Detail{}, 0, nil
}

func (m *memoryRepo) Update(_ context.Context, v *entity.Video) (*entity.Video, error) {
	cp := *v
	m.videos[v.ID] = &cp
	return &cp, nil
}

func (m *memoryRepo) TogglePublished(_ context.Context, id snowflake.ID) (*entity.Video, error) {
	v := m.videos[id]
	v.IsPublished = !v.IsPublished
	cp := *v
	return &cp, nil
}

func (m *memoryRepo) Delete(_ context.Context, id snowflake.ID) error {
	if _, ok := m.videos[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.videos, id)
	return nil
}

func (m *memoryRepo) RecordView(_ context.Context, videoID, viewerID snowflake.ID) error {
	m.views[viewerID] = append(m.views[viewerID], videoID)
	m.videos[videoID].Views++
	return nil
}

type memoryMedia struct{ deleted []string }

func (f *memoryMedia) Upload(_ context.Context, p, folder string) (*media.Asset, error) {
	return &media.Asset{URL: "https://media.test/" + folder + "/" + filepath.Base(p)}, nil
}

func (f *memoryMedia) Delete(_ context.Context, url string) (bool, error) {
	f.deleted = append(f.deleted, url)
	return true, nil
}

var (
	owner    = &userentity.User{ID: 1, Username: "owner"}
	stranger = &userentity.User{ID: 2, Username: "stranger"}
)

func setup(t *testing.T) (*Service, *memoryRepo, *memoryMedia, *entity.Video) {
	t.Helper()
	ids, err := utilities.NewIDGenerator(1)
	require.NoError(t, err)
	repo, store := newMemoryRepo(), &memoryMedia{}
	svc := NewService(repo, ids, store, nil)
	v, err := svc.Publish(context.Background(), owner, PublishInput{
		Title: "Intro", Description: "first", VideoPath: "/tmp/v.mp4", ThumbnailPath: "/tmp/t.png", Duration: 12,
	})
	require.NoError(t, err)
	return svc, repo, store, v
}

func TestPublish(t *testing.T) {
	_, _, _, v := setup(t)
	assert.Equal(t, snowflake.ID(1), v.Owner)
	assert.Equal(t, "https://media.test/videos/v.mp4", v.VideoURL)
	assert.Equal(t, 12.0, v.Duration)
}

func TestPublishValidation(t *testing.T) {
	svc, _, _, _ := setup(t)
	_, err := svc.Publish(context.Background(), owner, PublishInput{Title: "x", VideoPath: "a", ThumbnailPath: "b"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
	_, err = svc.Publish(context.Background(), owner, PublishInput{Title: "x", Description: "y", VideoPath: "a"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestGetRecordsView(t *testing.T) {
	svc, repo, _, v := setup(t)
	d, err := svc.Get(context.Background(), stranger, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Views)
	assert.Equal(t, []snowflake.ID{v.ID}, repo.views[stranger.ID])
}

func TestUnpublishedVisibleToOwnerOnly(t *testing.T) {
	svc, _, _, v := setup(t)
	ctx := context.Background()

	_, err := svc.TogglePublish(ctx, owner, v.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, v.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Get(ctx, owner, v.ID)
	assert.NoError(t, err)
}

func TestMutationsRequireOwnership(t *testing.T) {
	svc, repo, store, v := setup(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, stranger, v.ID, UpdateInput{Title: "hacked"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.TogglePublish(ctx, stranger, v.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, stranger, v.ID), apperr.ErrForbidden)
	assert.Equal(t, "Intro", repo.videos[v.ID].Title)
	assert.True(t, repo.videos[v.ID].IsPublished)

	updated, err := svc.Update(ctx, owner, v.ID, UpdateInput{Title: "Intro 2", ThumbnailPath: "/tmp/t2.png"})
	require.NoError(t, err)
	assert.Equal(t, "Intro 2", updated.Title)
	assert.Equal(t, "first", updated.Description)
	assert.Equal(t, []string{"https://media.test/thumbnails/t.png"}, store.deleted)

	require.NoError(t, svc.Delete(ctx, owner, v.ID))
	assert.NotContains(t, repo.videos, v.ID)
	assert.ErrorIs(t, svc.Delete(ctx, owner, v.ID), apperr.ErrNotFound)
}

func TestListIncludesUnpublishedOnlyForOwnChannel(t *testing.T) {
	svc, repo, _, _ := setup(t)
	ctx := context.Background()

	_, _, err := svc.List(ctx, owner, entity.ListQuery{OwnerID: owner.ID})
	require.NoError(t, err)
	assert.True(t, repo.lastQ.IncludeUnpublished)

	_, _, err = svc.List(ctx, stranger, entity.ListQuery{OwnerID: owner.ID})
	require.NoError(t, err)
	assert.False(t, repo.lastQ.IncludeUnpublished)

	_, _, err = svc.List(ctx, owner, entity.ListQuery{})
	require.NoError(t, err)
	assert.False(t, repo.lastQ.IncludeUnpublished)
}
