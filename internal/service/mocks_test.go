package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sneakerdex/internal/auth"
	"sneakerdex/internal/model"
	"sneakerdex/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID, columns []string) (*model.User, error) {
	args := m.Called(ctx, id, columns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByExternalID(ctx context.Context, externalID string, columns []string) (*model.User, error) {
	args := m.Called(ctx, externalID, columns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string, columns []string) (*model.User, error) {
	args := m.Called(ctx, email, columns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameWithSecret(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) LinkExternalID(ctx context.Context, id uuid.UUID, externalID string) (bool, error) {
	args := m.Called(ctx, id, externalID)
	return args.Bool(0), args.Error(1)
}

// MockSneakerRepository is a mock implementation of SneakerRepository.
type MockSneakerRepository struct {
	mock.Mock
}

func (m *MockSneakerRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Sneaker, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sneaker), args.Error(1)
}

func (m *MockSneakerRepository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*model.Sneaker, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sneaker), args.Error(1)
}

func (m *MockSneakerRepository) FindOwnedByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.Sneaker, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sneaker), args.Error(1)
}

func (m *MockSneakerRepository) Create(ctx context.Context, sneaker *model.Sneaker) error {
	args := m.Called(ctx, sneaker)
	return args.Error(0)
}

func (m *MockSneakerRepository) UpdateOwned(ctx context.Context, id, userID uuid.UUID, update model.SneakerUpdate) (*model.Sneaker, error) {
	args := m.Called(ctx, id, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sneaker), args.Error(1)
}

func (m *MockSneakerRepository) DeleteOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// WithTransaction runs fn against the mock itself.
func (m *MockSneakerRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.SneakerRepository) error) error {
	m.Called(ctx)
	return fn(ctx, m)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, ttl).Error(0)
}

func (m *MockTokenStore) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	return m.Called(ctx, state, ttl).Error(0)
}

func (m *MockTokenStore) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	args := m.Called(ctx, state)
	return args.Bool(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHasher() *auth.BcryptHasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

func strPtr(s string) *string { return &s }

// newTestDB returns an isolated in-memory sqlite database with the schema applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Sneaker{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// stack wires every auth component over a real repository.
type stack struct {
	db          *gorm.DB
	users       repository.UserRepository
	resolver    IdentityResolver
	verifier    CredentialVerifier
	provisioner AccountProvisioner
	sessions    *auth.SessionIssuer
	auth        AuthService
}

func newStack(t *testing.T, store auth.TokenStoreInterface) *stack {
	t.Helper()
	log := discardLogger()
	hasher := testHasher()
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	resolver := NewIdentityResolver(users, log)

	cfg, err := auth.SessionConfigForMode(auth.StrategyToken, auth.ModeStandard, 0)
	require.NoError(t, err)
	sessions, err := auth.NewSessionIssuer("test-secret", cfg, resolver, store, log)
	require.NoError(t, err)

	verifier := NewCredentialVerifier(users, hasher, log)
	provisioner := NewAccountProvisioner(users, resolver, hasher, log)
	return &stack{
		db:          db,
		users:       users,
		resolver:    resolver,
		verifier:    verifier,
		provisioner: provisioner,
		sessions:    sessions,
		auth:        NewAuthService(users, verifier, resolver, provisioner, sessions, hasher, log),
	}
}

var gormNotFound = gorm.ErrRecordNotFound
