package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

func newTestUserService(t *testing.T) (*UserService, *memoryRepo, *memoryMedia) {
	t.Helper()
	ids, err := utilities.NewIDGenerator(1)
	require.NoError(t, err)
	repo := newMemoryRepo()
	store := &memoryMedia{}
	return NewUserService(repo, BcryptHasher{Cost: bcrypt.MinCost}, ids, store, nil), repo, store
}

func registerAlice(t *testing.T, svc *UserService) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username:   "  Alice ",
		Email:      "alice@example.com",
		FullName:   "Alice A",
		Password:   "s3cret",
		AvatarPath: "/tmp/a.png",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, _, store := newTestUserService(t)
	u := registerAlice(t, svc)

	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "https://media.test/avatars/a.png", u.Avatar)
	assert.Empty(t, u.PasswordHash)
	assert.Len(t, store.uploaded, 1)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "", FullName: "Bob", Password: "x", AvatarPath: "a"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "b@x", FullName: "Bob", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	registerAlice(t, svc)
	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@x", FullName: "A", Password: "x", AvatarPath: "a"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAuthenticatePassword(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	registerAlice(t, svc)
	ctx := context.Background()

	u, err := svc.AuthenticatePassword(ctx, "ALICE", "", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Empty(t, u.PasswordHash)

	_, err = svc.AuthenticatePassword(ctx, "", "alice@example.com", "s3cret")
	assert.NoError(t, err)

	_, err = svc.AuthenticatePassword(ctx, "alice", "", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredential)

	_, err = svc.AuthenticatePassword(ctx, "nobody", "", "s3cret")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredential)

	_, err = svc.AuthenticatePassword(ctx, "", "", "s3cret")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	u := registerAlice(t, svc)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.ID, "wrong", "next")
	require.Error(t, err)
	assert.Equal(t, "invalid old password", apperr.MessageOf(err))

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "s3cret", "next"))
	_, err = svc.AuthenticatePassword(ctx, "alice", "", "next")
	assert.NoError(t, err)
	_, err = svc.AuthenticatePassword(ctx, "alice", "", "s3cret")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredential)
}

func TestUpdateAvatarDeletesOldImage(t *testing.T) {
	svc, _, store := newTestUserService(t)
	u := registerAlice(t, svc)

	updated, err := svc.UpdateAvatar(context.Background(), u, "/tmp/new.png")
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/avatars/new.png", updated.Avatar)
	assert.Equal(t, []string{"https://media.test/avatars/a.png"}, store.deleted)
}

func TestUpdateDetailsRequiresFields(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	u := registerAlice(t, svc)

	_, err := svc.UpdateDetails(context.Background(), u.ID, "", "x@y")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	updated, err := svc.UpdateDetails(context.Background(), u.ID, "Alice B", "ab@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.FullName)
}

func TestChannelProfileNotFound(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	_, err := svc.ChannelProfile(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBcryptNeedsRehash(t *testing.T) {
	low := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := low.Hash("pw")
	require.NoError(t, err)
	assert.False(t, low.NeedsRehash(hash))
	assert.True(t, BcryptHasher{Cost: bcrypt.MinCost + 1}.NeedsRehash(hash))
	assert.False(t, low.NeedsRehash("not-a-hash"))
}
