package user

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/media"
)

// memoryRepo backs both the user flows and the token lifecycle in tests.
type memoryRepo struct {
	mu      sync.Mutex
	users   map[snowflake.ID]*entity.User
	refresh map[snowflake.ID]*string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[snowflake.ID]*entity.User{}, refresh: map[snowflake.ID]*string{}}
}

func (m *memoryRepo) public(u *entity.User) *entity.User {
	cp := *u
	cp.PasswordHash = ""
	cp.RefreshToken = nil
	return &cp
}

func (m *memoryRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id snowflake.ID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m.public(u), nil
}

func (m *memoryRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryRepo) GetPasswordHash(_ context.Context, id snowflake.ID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return "", sql.ErrNoRows
	}
	return u.PasswordHash, nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, id snowflake.ID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (m *memoryRepo) update(id snowflake.ID, fn func(*entity.User)) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	fn(u)
	return m.public(u), nil
}

func (m *memoryRepo) UpdateDetails(_ context.Context, id snowflake.ID, fullName, email string) (*entity.User, error) {
	return m.update(id, func(u *entity.User) { u.FullName, u.Email = fullName, email })
}

func (m *memoryRepo) UpdateAvatar(_ context.Context, id snowflake.ID, url string) (*entity.User, error) {
	return m.update(id, func(u *entity.User) { u.Avatar = url })
}

func (m *memoryRepo) UpdateCoverImage(_ context.Context, id snowflake.ID, url string) (*entity.User, error) {
	return m.update(id, func(u *entity.User) { u.CoverImage = url })
}

func (m *memoryRepo) ChannelProfile(_ context.Context, username string, _ snowflake.ID) (*entity.ChannelProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &entity.ChannelProfile{ID: u.ID, Username: u.Username, FullName: u.FullName}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryRepo) WatchHistory(context.Context, snowflake.ID) ([]entity.HistoryEntry, error) {
	return []entity.HistoryEntry{}, nil
}

func (m *memoryRepo) StoredRefreshToken(_ context.Context, id snowflake.ID) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return nil, sql.ErrNoRows
	}
	return m.refresh[id], nil
}

func (m *memoryRepo) SetRefreshToken(_ context.Context, id snowflake.ID, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	if token == nil {
		m.refresh[id] = nil
		return nil
	}
	v := *token
	m.refresh[id] = &v
	return nil
}

type memoryMedia struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (f *memoryMedia) Upload(_ context.Context, localPath, folder string) (*media.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://media.test/" + folder + "/" + filepath.Base(localPath)
	f.uploaded = append(f.uploaded, url)
	return &media.Asset{URL: url, Key: folder + "/" + filepath.Base(localPath)}, nil
}

func (f *memoryMedia) Delete(_ context.Context, url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return true, nil
}
