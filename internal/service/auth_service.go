package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-user-service/internal/model"
	"go-user-service/internal/token"
	"go-user-service/pkg/apierror"
)

// userDirectory is the credential/identity collaborator. During refresh
// the user is re-resolved by ID so stale token claims are never
// trusted.
type userDirectory interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
}

type sessionStore interface {
	Put(ctx context.Context, tokenID string, userID string, ttl time.Duration) error
	Get(ctx context.Context, tokenID string) (string, error)
	Delete(ctx context.Context, tokenID string) error
}

type AuthService struct {
	codec      *token.Codec
	sessions   sessionStore
	users      userDirectory
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(codec *token.Codec, sessions sessionStore, users userDirectory, issuer string, accessTTL time.Duration, refreshTTL time.Duration) (*AuthService, error) {
	if codec == nil {
		return nil, errors.New("token codec is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	if refreshTTL <= accessTTL {
		return nil, errors.New("refresh TTL must exceed access TTL")
	}

	return &AuthService{
		codec:      codec,
		sessions:   sessions,
		users:      users,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.LoginResult{}, apierror.BadRequest("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResult{}, apierror.Unauthorized("invalid credentials")
	}
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("resolve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.LoginResult{}, apierror.Unauthorized("invalid credentials")
	}

	issued, err := s.issuePair(ctx, user)
	if err != nil {
		return model.LoginResult{}, err
	}

	return model.LoginResult{User: user.Public(), Token: issued.pair}, nil
}

// Refresh rotates a live refresh token into a brand-new pair. The old
// refresh token is strictly single-use: its session entry is deleted
// once the new pair's entries are written, so it cannot mint again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.codec.Verify(token.ClassRefresh, refreshToken)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is invalid")
	}

	// Liveness check; any store failure means validity cannot be
	// confirmed, so reject.
	userID, err := s.sessions.Get(ctx, claims.TokenID)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is invalid")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.TokenPair{}, apierror.Unauthorized("refresh token is invalid")
	}

	issued, err := s.issuePair(ctx, user)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.sessions.Delete(ctx, claims.TokenID); err != nil {
		// Could not retire the old token; withdraw the new pair rather
		// than leave two live refresh tokens behind.
		_ = s.sessions.Delete(ctx, issued.accessID)
		_ = s.sessions.Delete(ctx, issued.refreshID)
		return model.TokenPair{}, fmt.Errorf("%w: retire refresh token", model.ErrStoreUnavailable)
	}

	return issued.pair, nil
}

// Logout revokes the access token's session entry, and the paired
// refresh token's entry when the client supplies it. Deleting an absent
// entry is a no-op, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, accessToken string, refreshToken string) error {
	claims, err := s.codec.Verify(token.ClassAccess, accessToken)
	if err != nil {
		return apierror.Unauthorized("invalid token")
	}

	if err := s.sessions.Delete(ctx, claims.TokenID); err != nil {
		return fmt.Errorf("%w: revoke access token", model.ErrStoreUnavailable)
	}

	if refreshToken != "" {
		if refreshClaims, err := s.codec.Verify(token.ClassRefresh, refreshToken); err == nil {
			_ = s.sessions.Delete(ctx, refreshClaims.TokenID)
		}
	}

	return nil
}

// Authorize is the gate's verification path: the codec check and the
// session liveness check must both pass. Store failures reject.
func (s *AuthService) Authorize(ctx context.Context, accessToken string) (model.AuthIdentity, error) {
	claims, err := s.codec.Verify(token.ClassAccess, accessToken)
	if err != nil {
		return model.AuthIdentity{}, apierror.Unauthorized("invalid token")
	}

	userID, err := s.sessions.Get(ctx, claims.TokenID)
	if err != nil {
		return model.AuthIdentity{}, apierror.Unauthorized("invalid token")
	}

	return model.AuthIdentity{
		UserID:  userID,
		Subject: claims.Subject,
		TokenID: claims.TokenID,
	}, nil
}

type issuedPair struct {
	pair      model.TokenPair
	accessID  string
	refreshID string
}

// issuePair mints and stores a new access+refresh pair. Both session
// writes must land; a partial write rolls back and fails the whole
// operation.
func (s *AuthService) issuePair(ctx context.Context, user model.User) (issuedPair, error) {
	accessClaims := token.NewClaims(user.Email, s.issuer, s.accessTTL)
	refreshClaims := token.NewClaims(user.Email, s.issuer, s.refreshTTL)

	accessToken, err := s.codec.Sign(token.ClassAccess, accessClaims)
	if err != nil {
		return issuedPair{}, err
	}
	refreshToken, err := s.codec.Sign(token.ClassRefresh, refreshClaims)
	if err != nil {
		return issuedPair{}, err
	}

	if err := s.sessions.Put(ctx, accessClaims.TokenID, user.ID, s.accessTTL); err != nil {
		return issuedPair{}, fmt.Errorf("%w: store access session", model.ErrStoreUnavailable)
	}
	if err := s.sessions.Put(ctx, refreshClaims.TokenID, user.ID, s.refreshTTL); err != nil {
		_ = s.sessions.Delete(ctx, accessClaims.TokenID)
		return issuedPair{}, fmt.Errorf("%w: store refresh session", model.ErrStoreUnavailable)
	}

	return issuedPair{
		pair: model.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int64(s.accessTTL.Seconds()),
		},
		accessID:  accessClaims.TokenID,
		refreshID: refreshClaims.TokenID,
	}, nil
}
