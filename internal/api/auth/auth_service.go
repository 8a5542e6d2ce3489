package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio-api/app/observability/metrics"
	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/types"
)

// ErrTokenCreation marks a signing failure so the handler can return the
// distinct "Could not create token" response.
var ErrTokenCreation = errors.New("could not create token")

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	// Register creates the user and issues an access token for it.
	// Returns types.ErrConflict when the email is already taken.
	Register(ctx context.Context, name, email, password string) (*types.User, string, error)

	// Login verifies credentials and issues an access token. Unknown email
	// and wrong password are both types.ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (*types.User, string, error)

	// Logout revokes the presented token until its natural expiry.
	Logout(ctx context.Context, claims *types.Claims) error

	// GetUserByID resolves an authenticated user id to its record.
	GetUserByID(ctx context.Context, userID string) (*types.User, error)

	// IsTokenRevoked is consulted by the middleware on every protected
	// request.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthServiceImpl struct {
	repo     AuthRepo
	logger   *slog.Logger
	jwtCfg   config.JWTConfig
	denylist *cache.Cache
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		repo:     repo,
		logger:   logger,
		jwtCfg:   jwtCfg,
		denylist: cache.New(time.Hour, 10*time.Minute),
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*types.User, string, error) {
	metrics.Get().AuthRequestsTotal.Add(ctx, 1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, name, email, string(hashed))
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrTokenCreation, err)
	}

	return user, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	metrics.Get().AuthRequestsTotal.Add(ctx, 1)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Same answer as a wrong password so the response never reveals
			// whether the email exists.
			return nil, "", types.ErrUnauthenticated
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", types.ErrUnauthenticated
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrTokenCreation, err)
	}

	return user, token, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, claims *types.Claims) error {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id in token: %w", err)
	}

	expiresAt := time.Now().Add(s.jwtCfg.Expiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.repo.RevokeToken(ctx, claims.ID, userID, expiresAt); err != nil {
		return err
	}

	// The denylist only needs to remember the jti until the token would have
	// expired on its own.
	if ttl := time.Until(expiresAt); ttl > 0 {
		s.denylist.Set(claims.ID, true, ttl)
	}
	return nil
}

func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", types.ErrNotFound)
	}
	return s.repo.GetUserByID(ctx, id)
}

func (s *AuthServiceImpl) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if _, found := s.denylist.Get(jti); found {
		return true, nil
	}

	revoked, err := s.repo.IsTokenRevoked(ctx, jti)
	if err != nil {
		return false, err
	}
	if revoked {
		s.denylist.Set(jti, true, cache.DefaultExpiration)
	}
	return revoked, nil
}

// generateAccessToken signs an HS256 JWT carrying the user identity and a
// fresh jti for revocation tracking.
func (s *AuthServiceImpl) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}
