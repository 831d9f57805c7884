package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glebkarpov/identity-hub/internal/authctx"
	"github.com/glebkarpov/identity-hub/internal/lib/jwt"
	"github.com/glebkarpov/identity-hub/internal/lib/password"
	"github.com/glebkarpov/identity-hub/internal/models"
	"github.com/glebkarpov/identity-hub/internal/storage"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmailAndActive(ctx context.Context, email string, active bool) (*models.User, error) {
	args := m.Called(ctx, email, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByIDAndActive(ctx context.Context, userUID string, active bool) (*models.User, error) {
	args := m.Called(ctx, userUID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockViewCache struct {
	mock.Mock
}

func (m *MockViewCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockViewCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockViewCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func (m *MockNotifier) SendTemporaryPassword(ctx context.Context, email, tempPassword string) error {
	args := m.Called(ctx, email, tempPassword)
	return args.Error(0)
}

type MockRolesProvider struct {
	mock.Mock
}

func (m *MockRolesProvider) RolesFor(ctx context.Context, userUID string) ([]string, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type stubIDGenerator struct {
	uid string
}

func (g *stubIDGenerator) Generate() string {
	return g.uid
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

type serviceMocks struct {
	repo     *MockUserRepository
	cache    *MockViewCache
	notifier *MockNotifier
	roles    *MockRolesProvider
	hasher   *password.Hasher
	jwtMaker jwt.Maker
}

func newTestService(uid string) (*Service, *serviceMocks) {
	m := &serviceMocks{
		repo:     new(MockUserRepository),
		cache:    new(MockViewCache),
		notifier: new(MockNotifier),
		roles:    new(MockRolesProvider),
		hasher:   password.NewHasher(4),
		jwtMaker: jwt.NewJWTMaker("test-secret-key", time.Hour),
	}
	svc := New(m.repo, &stubIDGenerator{uid: uid}, m.hasher, m.jwtMaker,
		m.roles, m.notifier, m.cache, newNoopLogger())
	return svc, m
}

func TestService_Register_NewUser(t *testing.T) {
	svc, m := newTestService("generated-uid")
	ctx := context.Background()

	var saved models.User
	m.repo.On("FindUserByEmail", ctx, "alice@example.com").
		Return(nil, storage.ErrUserNotFound).Once()
	m.repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(models.User)
		}).Return(nil).Once()
	m.notifier.On("SendVerificationCode", ctx, "alice@example.com", mock.AnythingOfType("string")).
		Return(nil).Once()

	err := svc.Register(ctx, "  Alice@Example.COM ", "secret-password")
	require.NoError(t, err)

	assert.Equal(t, "generated-uid", saved.UID)
	assert.Equal(t, "alice@example.com", saved.Email)
	assert.False(t, saved.IsActive)
	assert.Regexp(t, `^\d{4}$`, saved.VerificationCode)
	assert.NoError(t, m.hasher.Compare(saved.PasswordHash, "secret-password"))

	sentCode := m.notifier.Calls[0].Arguments.String(2)
	assert.Equal(t, saved.VerificationCode, sentCode)

	m.repo.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestService_Register_PendingUserKeepsUID(t *testing.T) {
	svc, m := newTestService("should-not-be-used")
	ctx := context.Background()

	pending := &models.User{
		UID:              "existing-uid",
		Email:            "bob@example.com",
		VerificationCode: "1111",
		IsActive:         false,
	}

	var saved models.User
	m.repo.On("FindUserByEmail", ctx, "bob@example.com").Return(pending, nil).Once()
	m.repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(models.User)
		}).Return(nil).Once()
	m.notifier.On("SendVerificationCode", ctx, "bob@example.com", mock.AnythingOfType("string")).
		Return(nil).Once()

	err := svc.Register(ctx, "bob@example.com", "another-password")
	require.NoError(t, err)

	assert.Equal(t, "existing-uid", saved.UID)
	assert.False(t, saved.IsActive)

	m.repo.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestService_Register_DuplicateActiveUser(t *testing.T) {
	svc, m := newTestService("generated-uid")
	ctx := context.Background()

	active := &models.User{UID: "uid1", Email: "carol@example.com", IsActive: true}
	m.repo.On("FindUserByEmail", ctx, "carol@example.com").Return(active, nil).Once()

	err := svc.Register(ctx, "carol@example.com", "secret-password")
	assert.ErrorIs(t, err, ErrDuplicateActiveUser)

	m.repo.AssertExpectations(t)
	m.repo.AssertNotCalled(t, "SaveUser", mock.Anything, mock.Anything)
	m.notifier.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Activate(t *testing.T) {
	tests := []struct {
		name        string
		pending     *models.User
		findErr     error
		code        string
		expectedErr error
	}{
		{
			name:    "success",
			pending: &models.User{UID: "uid1", Email: "dave@example.com", VerificationCode: "0427"},
			code:    "0427",
		},
		{
			name:        "unknown email",
			findErr:     storage.ErrUserNotFound,
			code:        "0427",
			expectedErr: ErrUnknownEmail,
		},
		{
			name:        "wrong code",
			pending:     &models.User{UID: "uid1", Email: "dave@example.com", VerificationCode: "0427"},
			code:        "9999",
			expectedErr: ErrInvalidVerificationCode,
		},
		{
			name:        "code already consumed",
			pending:     &models.User{UID: "uid1", Email: "dave@example.com", VerificationCode: ""},
			code:        "",
			expectedErr: ErrInvalidVerificationCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService("generated-uid")
			ctx := context.Background()

			m.repo.On("FindUserByEmailAndActive", ctx, "dave@example.com", false).
				Return(tt.pending, tt.findErr).Once()

			var saved models.User
			if tt.expectedErr == nil {
				m.repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
					Run(func(args mock.Arguments) {
						saved = args.Get(1).(models.User)
					}).Return(nil).Once()
			}

			err := svc.Activate(ctx, "dave@example.com", tt.code)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.True(t, saved.IsActive)
				assert.Empty(t, saved.VerificationCode)
			}

			m.repo.AssertExpectations(t)
		})
	}
}

func TestService_SignIn_Success(t *testing.T) {
	svc, m := newTestService("generated-uid")
	ctx := context.Background()

	hash, err := m.hasher.Hash("correct-password")
	require.NoError(t, err)
	active := &models.User{UID: "uid1", Email: "erin@example.com", PasswordHash: hash, IsActive: true}

	m.repo.On("FindUserByEmailAndActive", ctx, "erin@example.com", true).Return(active, nil).Once()
	m.roles.On("RolesFor", ctx, "uid1").Return([]string{"user", "admin"}, nil).Once()

	token, err := svc.SignIn(ctx, "Erin@Example.com", "correct-password")
	require.NoError(t, err)

	claims, err := m.jwtMaker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid1", claims.UserUID)
	assert.Equal(t, []string{"user", "admin"}, claims.RoleList())

	m.repo.AssertExpectations(t)
	m.roles.AssertExpectations(t)
}

func TestService_SignIn_FailuresAreIndistinguishable(t *testing.T) {
	svc, m := newTestService("generated-uid")
	ctx := context.Background()

	hash, err := m.hasher.Hash("correct-password")
	require.NoError(t, err)
	active := &models.User{UID: "uid1", Email: "erin@example.com", PasswordHash: hash, IsActive: true}

	m.repo.On("FindUserByEmailAndActive", ctx, "nobody@example.com", true).
		Return(nil, storage.ErrUserNotFound).Once()
	m.repo.On("FindUserByEmailAndActive", ctx, "erin@example.com", true).
		Return(active, nil).Once()

	_, errUnknown := svc.SignIn(ctx, "nobody@example.com", "whatever")
	_, errWrongPass := svc.SignIn(ctx, "erin@example.com", "wrong-password")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)

	m.roles.AssertNotCalled(t, "RolesFor", mock.Anything, mock.Anything)
}

func TestService_ResetPassword(t *testing.T) {
	svc, m := newTestService("generated-uid")
	ctx := context.Background()

	oldHash, err := m.hasher.Hash("old-password")
	require.NoError(t, err)
	active := &models.User{UID: "uid1", Email: "frank@example.com", PasswordHash: oldHash, IsActive: true}

	var saved models.User
	var sentPassword string
	m.repo.On("FindUserByEmailAndActive", ctx, "frank@example.com", true).Return(active, nil).Once()
	m.repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(models.User)
		}).Return(nil).Once()
	m.notifier.On("SendTemporaryPassword", ctx, "frank@example.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			sentPassword = args.String(2)
		}).Return(nil).Once()

	err = svc.ResetPassword(ctx, "frank@example.com")
	require.NoError(t, err)

	assert.Error(t, m.hasher.Compare(saved.PasswordHash, "old-password"))
	assert.NoError(t, m.hasher.Compare(saved.PasswordHash, sentPassword))

	m.repo.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestService_ResetPassword_UnknownEmail(t *testing.T) {
	svc, m := newTestService("generated-uid")
	ctx := context.Background()

	m.repo.On("FindUserByEmailAndActive", ctx, "nobody@example.com", true).
		Return(nil, storage.ErrUserNotFound).Once()

	err := svc.ResetPassword(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUnknownEmail)

	m.notifier.AssertNotCalled(t, "SendTemporaryPassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetUser(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		svc, m := newTestService("generated-uid")
		ctx := context.Background()

		m.cache.On("Get", ctx, "userview:uid1", mock.Anything).
			Run(func(args mock.Arguments) {
				view := args.Get(2).(*models.UserView)
				*view = models.UserView{UID: "uid1", Email: "grace@example.com"}
			}).Return(true, nil).Once()

		view, err := svc.GetUser(ctx, "uid1")
		require.NoError(t, err)
		assert.Equal(t, "grace@example.com", view.Email)

		m.repo.AssertNotCalled(t, "FindUserByIDAndActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache miss reads repository and fills cache", func(t *testing.T) {
		svc, m := newTestService("generated-uid")
		ctx := context.Background()

		active := &models.User{
			UID:          "uid1",
			Email:        "grace@example.com",
			PasswordHash: "hash",
			IsActive:     true,
			FirstName:    "Grace",
		}
		m.cache.On("Get", ctx, "userview:uid1", mock.Anything).Return(false, nil).Once()
		m.repo.On("FindUserByIDAndActive", ctx, "uid1", true).Return(active, nil).Once()
		m.cache.On("Set", ctx, "userview:uid1", active.ToView(), viewCacheTTL).Return(nil).Once()

		view, err := svc.GetUser(ctx, "uid1")
		require.NoError(t, err)
		assert.Equal(t, "uid1", view.UID)
		assert.Equal(t, "Grace", view.FirstName)

		m.repo.AssertExpectations(t)
		m.cache.AssertExpectations(t)
	})

	t.Run("unknown or inactive user", func(t *testing.T) {
		svc, m := newTestService("generated-uid")
		ctx := context.Background()

		m.cache.On("Get", ctx, "userview:uid2", mock.Anything).Return(false, nil).Once()
		m.repo.On("FindUserByIDAndActive", ctx, "uid2", true).
			Return(nil, storage.ErrUserNotFound).Once()

		_, err := svc.GetUser(ctx, "uid2")
		assert.ErrorIs(t, err, ErrUnknownOrInactiveUser)
	})

	t.Run("cache read failure falls back to repository", func(t *testing.T) {
		svc, m := newTestService("generated-uid")
		ctx := context.Background()

		active := &models.User{UID: "uid1", Email: "grace@example.com", IsActive: true}
		m.cache.On("Get", ctx, "userview:uid1", mock.Anything).
			Return(false, errors.New("redis down")).Once()
		m.repo.On("FindUserByIDAndActive", ctx, "uid1", true).Return(active, nil).Once()
		m.cache.On("Set", ctx, "userview:uid1", active.ToView(), viewCacheTTL).Return(nil).Once()

		view, err := svc.GetUser(ctx, "uid1")
		require.NoError(t, err)
		assert.Equal(t, "uid1", view.UID)
	})
}

func TestService_GetMe_NotAuthenticated(t *testing.T) {
	svc, _ := newTestService("generated-uid")

	_, err := svc.GetMe(context.Background())
	assert.ErrorIs(t, err, authctx.ErrNotAuthenticated)
}

func TestService_UpdateMe(t *testing.T) {
	t.Run("blank password keeps current hash", func(t *testing.T) {
		svc, m := newTestService("generated-uid")
		ctx := authctx.WithIdentity(context.Background(), authctx.Identity{UserUID: "uid1"})

		active := &models.User{
			UID:          "uid1",
			Email:        "henry@example.com",
			PasswordHash: "current-hash",
			IsActive:     true,
			FirstName:    "Old",
		}

		var saved models.User
		m.repo.On("FindUserByIDAndActive", ctx, "uid1", true).Return(active, nil).Once()
		m.repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(models.User)
			}).Return(nil).Once()
		m.cache.On("Invalidate", ctx, "userview:uid1").Return(nil).Once()

		view, err := svc.UpdateMe(ctx, models.UpdateUserEntry{
			Password:    "   ",
			FirstName:   "Henry",
			LastName:    "Smith",
			CountryCode: "DE",
			City:        "Berlin",
		})
		require.NoError(t, err)

		assert.Equal(t, "current-hash", saved.PasswordHash)
		assert.Equal(t, "Henry", saved.FirstName)
		assert.Equal(t, "Smith", saved.LastName)
		assert.Equal(t, "DE", saved.CountryCode)
		assert.Equal(t, "Berlin", saved.City)
		assert.Equal(t, "Henry", view.FirstName)

		m.repo.AssertExpectations(t)
		m.cache.AssertExpectations(t)
	})

	t.Run("non-blank password is rehashed", func(t *testing.T) {
		svc, m := newTestService("generated-uid")
		ctx := authctx.WithIdentity(context.Background(), authctx.Identity{UserUID: "uid1"})

		active := &models.User{UID: "uid1", Email: "henry@example.com", PasswordHash: "current-hash", IsActive: true}

		var saved models.User
		m.repo.On("FindUserByIDAndActive", ctx, "uid1", true).Return(active, nil).Once()
		m.repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
			Run(func(args mock.Arguments) {
				saved = args.Get(1).(models.User)
			}).Return(nil).Once()
		m.cache.On("Invalidate", ctx, "userview:uid1").Return(nil).Once()

		_, err := svc.UpdateMe(ctx, models.UpdateUserEntry{Password: "new-password"})
		require.NoError(t, err)

		assert.NotEqual(t, "current-hash", saved.PasswordHash)
		assert.NoError(t, m.hasher.Compare(saved.PasswordHash, "new-password"))
	})

	t.Run("not authenticated", func(t *testing.T) {
		svc, _ := newTestService("generated-uid")

		_, err := svc.UpdateMe(context.Background(), models.UpdateUserEntry{})
		assert.ErrorIs(t, err, authctx.ErrNotAuthenticated)
	})
}

func TestService_DeactivateMe(t *testing.T) {
	svc, m := newTestService("generated-uid")
	ctx := authctx.WithIdentity(context.Background(), authctx.Identity{UserUID: "uid1"})

	active := &models.User{UID: "uid1", Email: "ivan@example.com", IsActive: true}

	var saved models.User
	m.repo.On("FindUserByIDAndActive", ctx, "uid1", true).Return(active, nil).Once()
	m.repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(models.User)
		}).Return(nil).Once()
	m.cache.On("Invalidate", ctx, "userview:uid1").Return(nil).Once()

	err := svc.DeactivateMe(ctx)
	require.NoError(t, err)

	assert.False(t, saved.IsActive)

	m.repo.AssertExpectations(t)
	m.cache.AssertExpectations(t)
}
