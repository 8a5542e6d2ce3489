package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-api/app/observability/metrics"
	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, name, email, hashedPassword string) (*types.User, error) {
	args := m.Called(ctx, name, email, hashedPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) RevokeToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	args := m.Called(ctx, jti, userID, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "test-issuer",
		Audience:  "test-audience",
		Expiry:    15 * time.Minute,
	}
}

func TestRegister(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service := NewAuthService(mockRepo, testJWTConfig(), slog.Default())

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		created := &types.User{
			ID:    uuid.New(),
			Name:  "Test User",
			Email: "test@example.com",
		}

		// The repo must receive a bcrypt hash, never the raw password.
		mockRepo.On("CreateUser", ctx, "Test User", "test@example.com",
			mock.MatchedBy(func(hash string) bool {
				return bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")) == nil
			})).Return(created, nil).Once()

		user, token, err := service.Register(ctx, "Test User", "test@example.com", "password123")

		assert.NoError(t, err)
		assert.Equal(t, created, user)
		assert.NotEmpty(t, token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		ctx := context.Background()
		mockRepo.On("CreateUser", ctx, "Test User", "taken@example.com", mock.AnythingOfType("string")).
			Return(nil, types.ErrConflict).Once()

		user, token, err := service.Register(ctx, "Test User", "taken@example.com", "password123")

		assert.ErrorIs(t, err, types.ErrConflict)
		assert.Nil(t, user)
		assert.Empty(t, token)
		mockRepo.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service := NewAuthService(mockRepo, testJWTConfig(), slog.Default())

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		password := "password123"
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		user := &types.User{
			ID:       uuid.New(),
			Name:     "Test User",
			Email:    "test@example.com",
			Password: string(hashedPassword),
		}

		mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil).Once()

		got, token, err := service.Login(ctx, user.Email, password)

		assert.NoError(t, err)
		assert.Equal(t, user, got)
		assert.NotEmpty(t, token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		ctx := context.Background()
		mockRepo.On("GetUserByEmail", ctx, "nobody@example.com").Return(nil, types.ErrNotFound).Once()

		got, token, err := service.Login(ctx, "nobody@example.com", "password123")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		assert.Nil(t, got)
		assert.Empty(t, token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidPassword", func(t *testing.T) {
		ctx := context.Background()
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.DefaultCost)

		user := &types.User{
			ID:       uuid.New(),
			Email:    "test@example.com",
			Password: string(hashedPassword),
		}

		mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil).Once()

		got, token, err := service.Login(ctx, user.Email, "wrongpassword")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		assert.Nil(t, got)
		assert.Empty(t, token)
		mockRepo.AssertExpectations(t)
	})
}

func TestGeneratedTokenClaims(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	cfg := testJWTConfig()
	service := NewAuthService(mockRepo, cfg, slog.Default())

	ctx := context.Background()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &types.User{ID: uuid.New(), Email: "test@example.com", Password: string(hashedPassword)}

	mockRepo.On("GetUserByEmail", ctx, user.Email).Return(user, nil).Once()

	_, tokenString, err := service.Login(ctx, user.Email, "password123")
	require.NoError(t, err)

	claims := &types.Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.SecretKey), nil
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Contains(t, claims.Audience, cfg.Audience)
}

func TestLogout(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service := NewAuthService(mockRepo, testJWTConfig(), slog.Default())

	t.Run("RevokesTokenAndDenylists", func(t *testing.T) {
		ctx := context.Background()
		userID := uuid.New()
		expiresAt := time.Now().Add(10 * time.Minute)

		claims := &types.Claims{
			UserID: userID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti-123",
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		}

		mockRepo.On("RevokeToken", ctx, "jti-123", userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		require.NoError(t, service.Logout(ctx, claims))

		// The denylist answers without touching the repo again.
		revoked, err := service.IsTokenRevoked(ctx, "jti-123")
		assert.NoError(t, err)
		assert.True(t, revoked)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidUserID", func(t *testing.T) {
		claims := &types.Claims{
			UserID:           "not-a-uuid",
			RegisteredClaims: jwt.RegisteredClaims{ID: "jti-456"},
		}
		err := service.Logout(context.Background(), claims)
		assert.Error(t, err)
	})
}

func TestIsTokenRevoked(t *testing.T) {
	t.Run("FallsBackToRepo", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testJWTConfig(), slog.Default())

		ctx := context.Background()
		mockRepo.On("IsTokenRevoked", ctx, "unknown-jti").Return(false, nil).Once()

		revoked, err := service.IsTokenRevoked(ctx, "unknown-jti")
		assert.NoError(t, err)
		assert.False(t, revoked)
		mockRepo.AssertExpectations(t)
	})

	t.Run("CachesRepoHit", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testJWTConfig(), slog.Default())

		ctx := context.Background()
		mockRepo.On("IsTokenRevoked", ctx, "revoked-jti").Return(true, nil).Once()

		revoked, err := service.IsTokenRevoked(ctx, "revoked-jti")
		require.NoError(t, err)
		require.True(t, revoked)

		// Second lookup answered from the denylist; the single .Once()
		// expectation would fail otherwise.
		revoked, err = service.IsTokenRevoked(ctx, "revoked-jti")
		assert.NoError(t, err)
		assert.True(t, revoked)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := NewAuthService(mockRepo, testJWTConfig(), slog.Default())

		ctx := context.Background()
		mockRepo.On("IsTokenRevoked", ctx, "jti").Return(false, errors.New("db down")).Once()

		_, err := service.IsTokenRevoked(ctx, "jti")
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetUserByID(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service := NewAuthService(mockRepo, testJWTConfig(), slog.Default())

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		id := uuid.New()
		user := &types.User{ID: id, Email: "test@example.com"}

		mockRepo.On("GetUserByID", ctx, id).Return(user, nil).Once()

		got, err := service.GetUserByID(ctx, id.String())
		assert.NoError(t, err)
		assert.Equal(t, user, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("MalformedID", func(t *testing.T) {
		_, err := service.GetUserByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
