// Package service implements the single-operator login the teacher's
// multi-user AuthService is collapsed to (spec §6): one bcrypt-hashed
// credential from config, JWT access/refresh tokens, refresh tokens
// revocable in Postgres.
package service

import (
	"context"
	"time"

	"github.com/jmartinez/canje/internal/platform/auth"
	"github.com/jmartinez/canje/modules/auth/model"
	"github.com/jmartinez/canje/modules/auth/ports"
)

type AuthService struct {
	tokenRepo     ports.RefreshTokenRepository
	jwtManager    *auth.JWTManager
	passwordHash  string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(tokenRepo ports.RefreshTokenRepository, jwtManager *auth.JWTManager, passwordHash string, accessExpiry, refreshExpiry time.Duration) *AuthService {
	return &AuthService{
		tokenRepo:     tokenRepo,
		jwtManager:    jwtManager,
		passwordHash:  passwordHash,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthTokens, error) {
	if s.passwordHash == "" {
		return nil, model.ErrOperatorNotConfigured
	}
	if err := auth.VerifyPassword(req.Password, s.passwordHash); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	return s.generateTokens(ctx, model.OperatorUserID)
}

func (s *AuthService) RefreshTokens(ctx context.Context, refreshTokenString string) (*model.AuthTokens, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshTokenString)
	if err != nil {
		return nil, model.ErrInvalidRefreshToken
	}

	tokenHash := auth.HashToken(refreshTokenString)
	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}
	if !dbToken.IsValid() {
		return nil, model.ErrInvalidRefreshToken
	}

	tokens, err := s.generateTokens(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	_ = s.tokenRepo.Revoke(ctx, tokenHash)
	return tokens, nil
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) generateTokens(ctx context.Context, userID string) (*model.AuthTokens, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	tokenHash := auth.HashToken(refreshToken)
	dbToken := model.NewRefreshToken(userID, tokenHash, time.Now().UTC().Add(s.refreshExpiry))
	if err := s.tokenRepo.Create(ctx, dbToken); err != nil {
		return nil, err
	}

	return &model.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}
