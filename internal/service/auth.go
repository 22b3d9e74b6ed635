package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_service/internal/hash"
	"github.com/Skotchmaster/todo_service/internal/logging"
	"github.com/Skotchmaster/todo_service/internal/models"
	"github.com/Skotchmaster/todo_service/internal/repo"
	"github.com/Skotchmaster/todo_service/internal/tokens"
)

type AuthService struct {
	Repo   repo.GormRepo
	Tokens *tokens.Manager
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register creates an account. Username is checked before email so a request
// clashing on both reports the username conflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if taken, err := s.Repo.UsernameTaken(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateUsername
	}
	if taken, err := s.Repo.EmailTaken(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateEmail
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		// Lost an insert race: the unique index fired after the pre-checks
		// passed. Classify against current state.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if taken, checkErr := s.Repo.UsernameTaken(ctx, username); checkErr == nil && taken {
				return nil, ErrDuplicateUsername
			}
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	l.Info("user_registered", "username", username)
	return &user, nil
}

// Login authenticates by email. An unknown email and a wrong password return
// the identical error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		l.Error("login_error", "error", err)
		return nil, err
	}

	l.Info("login_successful", "username", user.Username)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The presented
// token stays valid in the ledger until its own expiry or an explicit logout.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	subject, err := s.validateAndResolve(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.Repo.UserByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("refresh_error", "reason", "token subject has no account", "subject", subject)
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// LogOut revokes the presented refresh token. Revoking a token that is absent
// or already revoked is an error, not a no-op.
func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	ok, err := s.Repo.RevokeRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidRefreshToken
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := s.Tokens.IssueAccess(user.Username)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := s.Tokens.IssueRefresh(user.Username)
	if err != nil {
		return nil, err
	}

	record := models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: refreshExp.Unix(),
		Revoked:   false,
	}
	if err := s.Repo.CreateRefreshToken(ctx, &record); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// validateAndResolve decodes the token, then checks the ledger row by exact
// string. Decode failure, missing row, revocation and expiry all collapse into
// ErrInvalidRefreshToken.
func (s *AuthService) validateAndResolve(ctx context.Context, refreshToken string) (string, error) {
	subject, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	record, err := s.Repo.RefreshTokenByString(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}
	if record.Revoked || record.ExpiresAt <= time.Now().Unix() {
		return "", ErrInvalidRefreshToken
	}

	return subject, nil
}
