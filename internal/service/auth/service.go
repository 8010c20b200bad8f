package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/pkg/auth"
	"github.com/jwalitptl/walkin-api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*model.TokenResponse, error)
	Authenticate(ctx context.Context, token string) (*model.StaffSession, error)
	Logout(ctx context.Context, token string) error
}

type Service struct {
	accounts map[string]string
	hasher   security.PasswordHasher
	jwtSvc   auth.JWTService
	revoked  *cache.Cache
	logger   *zerolog.Logger
}

// NewService authenticates against the configured staff accounts. Revoked
// token ids are kept in memory until the token would have expired anyway.
func NewService(accounts []model.StaffAccount, hasher security.PasswordHasher, jwtSvc auth.JWTService, logger *zerolog.Logger) *Service {
	byName := make(map[string]string, len(accounts))
	for _, a := range accounts {
		byName[strings.ToLower(a.Username)] = a.PasswordHash
	}
	return &Service{
		accounts: byName,
		hasher:   hasher,
		jwtSvc:   jwtSvc,
		revoked:  cache.New(cache.NoExpiration, 10*time.Minute),
		logger:   logger,
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	hash, ok := s.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		s.logger.Info().Str("username", username).Msg("login for unknown account")
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(hash, password); err != nil {
		if !errors.Is(err, security.ErrMismatch) {
			s.logger.Error().Err(err).Str("username", username).Msg("stored password hash is unusable")
		}
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.jwtSvc.GenerateAccessToken(strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Unix(),
	}, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*model.StaffSession, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return nil, ErrTokenRevoked
	}
	return &model.StaffSession{User: claims.Username, TokenID: claims.ID}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	s.revoked.Set(claims.ID, struct{}{}, ttl)
	return nil
}
