package auth

import (
	"context"
	"errors"

	"github.com/hugh/orgbook/internal/apperrors"
	"github.com/hugh/orgbook/internal/database/models"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	jwt    *JWTService
	hasher *Hasher
}

func NewService(db *gorm.DB, jwt *JWTService, hasher *Hasher) *Service {
	return &Service{db: db, jwt: jwt, hasher: hasher}
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login verifies credentials and issues an access/refresh token pair. The
// error never says whether it was the email or the password that failed.
func (s *Service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).
		Where("email = ?", input.Email).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("email or password is incorrect")
		}
		return nil, err
	}

	if !s.hasher.Compare(input.Password, account.PasswordHash) {
		return nil, apperrors.Unauthorized("email or password is incorrect")
	}

	return s.issuePair(&account)
}

// Refresh exchanges a valid refresh token for a fresh token pair. The account
// is re-fetched so a deleted account cannot keep minting tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	var account models.Account
	if err := s.db.WithContext(ctx).
		Where("email = ?", claims.Email).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("account not found")
		}
		return nil, err
	}

	return s.issuePair(&account)
}

func (s *Service) issuePair(account *models.Account) (*TokenPair, error) {
	access, err := s.jwt.GenerateToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
