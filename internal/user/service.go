package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/media"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
	NeedsRehash(hash string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b BcryptHasher) Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), b.cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NeedsRehash is true when hash was produced with a lower cost than configured.
func (b BcryptHasher) NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return c < b.cost()
}

// Repository is the persistence the user flows need; *repo.UserRepo implements it.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	GetByID(ctx context.Context, id snowflake.ID) (*entity.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)
	GetPasswordHash(ctx context.Context, id snowflake.ID) (string, error)
	UpdatePassword(ctx context.Context, id snowflake.ID, hash string) error
	UpdateDetails(ctx context.Context, id snowflake.ID, fullName, email string) (*entity.User, error)
	UpdateAvatar(ctx context.Context, id snowflake.ID, url string) (*entity.User, error)
	UpdateCoverImage(ctx context.Context, id snowflake.ID, url string) (*entity.User, error)
	ChannelProfile(ctx context.Context, username string, viewerID snowflake.ID) (*entity.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID snowflake.ID) ([]entity.HistoryEntry, error)
}

// UserService orchestrates registration, password login and profile flows.
type UserService struct {
	repo   Repository
	hasher PasswordHasher
	ids    *utilities.IDGenerator
	media  media.Store
	logger *zap.SugaredLogger
}

func NewUserService(r Repository, hasher PasswordHasher, ids *utilities.IDGenerator, store media.Store, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, hasher: hasher, ids: ids, media: store, logger: logger}
}

// RegisterInput carries the registration form; image paths point at buffered temp files.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// Register validates the form, uploads the images and creates the account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Username == "" || in.Email == "" || in.FullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperr.BadRequest("all fields are required")
	}
	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, apperr.Persistence("failed to check existing user", err)
	}
	if exists {
		return nil, apperr.Conflict("user with email or username already exists")
	}
	if in.AvatarPath == "" {
		return nil, apperr.BadRequest("avatar file is required")
	}

	avatar, err := s.media.Upload(ctx, in.AvatarPath, "avatars")
	if err != nil {
		return nil, apperr.Media("failed to upload avatar", err)
	}
	var cover *media.Asset
	if in.CoverPath != "" {
		cover, err = s.media.Upload(ctx, in.CoverPath, "covers")
		if err != nil {
			s.discard(ctx, avatar.URL)
			return nil, apperr.Media("failed to upload cover image", err)
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.discard(ctx, avatar.URL)
		if cover != nil {
			s.discard(ctx, cover.URL)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}
	u := &entity.User{
		ID:           s.ids.Next(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		Avatar:       avatar.URL,
		PasswordHash: hash,
	}
	if cover != nil {
		u.CoverImage = cover.URL
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.discard(ctx, u.Avatar)
		s.discard(ctx, u.CoverImage)
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("user with email or username already exists")
		}
		return nil, apperr.Persistence("failed to create user", err)
	}
	created, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return nil, apperr.Persistence("failed to load created user", err)
	}
	s.logger.Infow("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// AuthenticatePassword checks the password for the account matching username or email.
// Unknown accounts and wrong passwords fail the same way to avoid user enumeration.
func (s *UserService) AuthenticatePassword(ctx context.Context, username, email, password string) (*entity.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.TrimSpace(email)
	if username == "" && email == "" {
		return nil, apperr.BadRequest("username or email is required")
	}
	u, err := s.repo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.InvalidCredential("invalid user credentials")
		}
		return nil, apperr.Persistence("failed to load user", err)
	}
	if u.PasswordHash == "" || !s.hasher.Verify(u.PasswordHash, password) {
		return nil, apperr.InvalidCredential("invalid user credentials")
	}
	if s.hasher.NeedsRehash(u.PasswordHash) {
		if newHash, err := s.hasher.Hash(password); err == nil {
			if err := s.repo.UpdatePassword(ctx, u.ID, newHash); err != nil {
				s.logger.Warnw("password rehash failed", "user_id", u.ID, "err", err)
			}
		}
	}
	u.PasswordHash = ""
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, id snowflake.ID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperr.BadRequest("new password is required")
	}
	hash, err := s.repo.GetPasswordHash(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user not found")
		}
		return apperr.Persistence("failed to load user", err)
	}
	if !s.hasher.Verify(hash, oldPassword) {
		return apperr.BadRequest("invalid old password")
	}
	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, newHash); err != nil {
		return apperr.Persistence("failed to update password", err)
	}
	return nil
}

// UpdateDetails changes full name and email.
func (s *UserService) UpdateDetails(ctx context.Context, id snowflake.ID, fullName, email string) (*entity.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, apperr.BadRequest("all fields are required")
	}
	u, err := s.repo.UpdateDetails(ctx, id, fullName, email)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("email is already in use")
		}
		return nil, apperr.Persistence("failed to update account details", err)
	}
	return u, nil
}

// UpdateAvatar uploads a new avatar and deletes the previous one on a best-effort basis.
func (s *UserService) UpdateAvatar(ctx context.Context, current *entity.User, path string) (*entity.User, error) {
	return s.replaceImage(ctx, current, path, "avatars", current.Avatar, s.repo.UpdateAvatar)
}

// UpdateCoverImage is UpdateAvatar for the channel cover.
func (s *UserService) UpdateCoverImage(ctx context.Context, current *entity.User, path string) (*entity.User, error) {
	return s.replaceImage(ctx, current, path, "covers", current.CoverImage, s.repo.UpdateCoverImage)
}

type imageUpdate func(ctx context.Context, id snowflake.ID, url string) (*entity.User, error)

func (s *UserService) replaceImage(ctx context.Context, current *entity.User, path, folder, oldURL string, update imageUpdate) (*entity.User, error) {
	if path == "" {
		return nil, apperr.BadRequest("image file is missing")
	}
	asset, err := s.media.Upload(ctx, path, folder)
	if err != nil {
		return nil, apperr.Media("failed to upload image", err)
	}
	u, err := update(ctx, current.ID, asset.URL)
	if err != nil {
		s.discard(ctx, asset.URL)
		return nil, apperr.Persistence("failed to update image", err)
	}
	s.discard(ctx, oldURL)
	return u, nil
}

// ChannelProfile returns the channel identified by username as seen by viewerID.
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewerID snowflake.ID) (*entity.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.BadRequest("username is missing")
	}
	p, err := s.repo.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("channel does not exist")
		}
		return nil, apperr.Persistence("failed to load channel", err)
	}
	return p, nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID snowflake.ID) ([]entity.HistoryEntry, error) {
	h, err := s.repo.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence("failed to load watch history", err)
	}
	return h, nil
}

// discard deletes an uploaded asset; failures are only logged.
func (s *UserService) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if _, err := s.media.Delete(ctx, url); err != nil {
		s.logger.Warnw("media cleanup failed", "url", url, "err", err)
	}
}
