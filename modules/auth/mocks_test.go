package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/chatterhq/chatter/modules/user"
	"github.com/chatterhq/chatter/pkg/storage"
)

// MockCredentialStore is a mock implementation of CredentialStore.
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Create(ctx context.Context, record Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCredentialStore) FindByUsername(ctx context.Context, username string) (Record, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(Record), args.Error(1)
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (Record, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(Record), args.Error(1)
}

func (m *MockCredentialStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (Record, error) {
	args := m.Called(ctx, username, email)
	return args.Get(0).(Record), args.Error(1)
}

func (m *MockCredentialStore) FindByResetToken(ctx context.Context, token string) (Record, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(Record), args.Error(1)
}

func (m *MockCredentialStore) UpdateResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	args := m.Called(ctx, id, token, expiresAt)
	return args.Error(0)
}

func (m *MockCredentialStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockProfileStore is a mock implementation of ProfileStore.
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) FindByID(ctx context.Context, id string) (user.Profile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.Profile), args.Error(1)
}

func (m *MockProfileStore) FindByAuthID(ctx context.Context, authID string) (user.Profile, error) {
	args := m.Called(ctx, authID)
	return args.Get(0).(user.Profile), args.Error(1)
}

// MockProfileCache is a mock implementation of ProfileCache.
type MockProfileCache struct {
	mock.Mock
}

func (m *MockProfileCache) Save(ctx context.Context, userID, uid string, profile user.Profile) error {
	args := m.Called(ctx, userID, uid, profile)
	return args.Error(0)
}

func (m *MockProfileCache) Get(ctx context.Context, userID string) (user.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(user.Profile), args.Error(1)
}

// MockUploader is a mock implementation of storage.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, fileData []byte, publicID string, overwrite, invalidate bool) (*storage.UploadResult, error) {
	args := m.Called(ctx, fileData, publicID, overwrite, invalidate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

func (m *MockUploader) URL(publicID string, version int64) string {
	args := m.Called(publicID, version)
	return args.String(0)
}

// MockSigner is a mock implementation of TokenSigner.
type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) Sign(claims any) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

