package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/callassist/internal/lib/apperr"
	"github.com/magabrotheeeer/callassist/internal/lib/jwt"
	"github.com/magabrotheeeer/callassist/internal/lib/metrics"
	"github.com/magabrotheeeer/callassist/internal/lib/period"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
	"github.com/magabrotheeeer/callassist/internal/storage/repository"
)

const manualMarkTimeout = 5 * time.Second

// Сообщения об отказе в доступе.
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgAccountDisabled    = "account is disabled"
	MsgRefreshRequired    = "refresh token is required"
	MsgTokenRevoked       = "refresh token has been revoked"
	MsgTokenExpired       = "refresh token has expired"
	MsgTokenInvalid       = "invalid refresh token"
	MsgTokenWrongType     = "invalid token type"
	MsgTokenStale         = "password was changed, please log in again"
	MsgUserNotFound       = "user not found"
)

// События для метрик.
const (
	eventLogin          = "login"
	eventRefresh        = "refresh"
	eventLogout         = "logout"
	eventChangePassword = "change_password"
)

// UserProfile профиль пользователя вместе с действующей подпиской.
type UserProfile struct {
	User         models.PublicUser        `json:"user"`
	Subscription *models.SubscriptionInfo `json:"subscription,omitempty"`
}

// Login проверяет пароль и выдаёт пару токенов.
// Неизвестный email и неверный пароль дают одинаковую ошибку.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	const op = "auth.Login"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || rawPassword == "" {
		metrics.RecordAuthEvent(eventLogin, metrics.OutcomeRejected)
		return nil, apperr.New(apperr.Validation, "email and password are required")
	}

	user, err := s.accounts.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.hasher.Verify(rawPassword, s.dummyHash)
		metrics.RecordAuthEvent(eventLogin, metrics.OutcomeRejected)
		return nil, apperr.New(apperr.Auth, MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}
	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		metrics.RecordAuthEvent(eventLogin, metrics.OutcomeRejected)
		return nil, apperr.New(apperr.Auth, MsgInvalidCredentials)
	}
	if !user.IsActive {
		metrics.RecordAuthEvent(eventLogin, metrics.OutcomeRejected)
		return nil, apperr.New(apperr.Auth, MsgAccountDisabled)
	}

	pair, err := s.tokens.IssuePairSince(user.ID, user.TokenVersion)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}
	now := s.now().UTC()
	if err := s.accounts.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to update last login", slog.String("user_id", user.ID), sl.Err(err))
	} else {
		user.LastLoginAt = &now
	}
	metrics.RecordAuthEvent(eventLogin, metrics.OutcomeSuccess)
	return &Result{User: user.Public(), Tokens: pair}, nil
}

// Refresh выдаёт новый токен доступа по токену обновления.
// Токен обновления не ротируется.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "auth.Refresh"
	access, err := s.refresh(ctx, op, strings.TrimSpace(refreshToken))
	if err != nil {
		if apperr.KindOf(err) != apperr.Internal {
			metrics.RecordAuthEvent(eventRefresh, metrics.OutcomeRejected)
		}
		return "", err
	}
	metrics.RecordAuthEvent(eventRefresh, metrics.OutcomeSuccess)
	return access, nil
}

func (s *AuthService) refresh(ctx context.Context, op, token string) (string, error) {
	if token == "" {
		return "", apperr.New(apperr.Validation, MsgRefreshRequired)
	}

	revoked, err := s.revocations.IsRevoked(ctx, token)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}
	if revoked {
		return "", apperr.New(apperr.Auth, MsgTokenRevoked)
	}

	claims, err := s.tokens.VerifyRefresh(token)
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return "", apperr.Wrap(apperr.Auth, MsgTokenExpired, err)
	case errors.Is(err, jwt.ErrWrongType):
		return "", apperr.Wrap(apperr.Auth, MsgTokenWrongType, err)
	case err != nil:
		return "", apperr.Wrap(apperr.Auth, MsgTokenInvalid, err)
	}

	user, err := s.accounts.GetUserByID(ctx, claims.UserID())
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperr.Wrap(apperr.Auth, MsgUserNotFound, err)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}
	if !user.IsActive {
		return "", apperr.New(apperr.Auth, MsgAccountDisabled)
	}
	if jwt.IsStale(claims, user.TokenVersion) {
		return "", apperr.New(apperr.Auth, MsgTokenStale)
	}

	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}
	return access, nil
}

// Logout отзывает токен обновления. Всегда завершается успешно:
// неизвестный, просроченный или уже отозванный токен не ошибка.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return
	}

	var userID string
	expiresAt := s.now().UTC().Add(s.opts.RefreshTTL)
	if claims, err := s.tokens.Inspect(refreshToken); err == nil {
		userID = claims.UserID()
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	} else {
		s.log.Debug("logout with undecodable token", sl.Err(err))
	}

	if err := s.revocations.Revoke(ctx, refreshToken, userID, models.RevokeReasonLogout, expiresAt); err != nil {
		metrics.RecordAuthEvent(eventLogout, metrics.OutcomeRejected)
		s.log.Error("failed to revoke refresh token", slog.String("user_id", userID), sl.Err(err))
		return
	}
	metrics.RecordAuthEvent(eventLogout, metrics.OutcomeSuccess)
}

// ChangePassword меняет пароль и делает устаревшими все ранее выданные токены обновления.
// Новая пара не выдаётся: после смены клиент входит заново.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	const op = "auth.ChangePassword"
	if currentPassword == "" {
		return apperr.New(apperr.Validation, "current password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if currentPassword == newPassword {
		return apperr.New(apperr.Validation, "new password must differ from the current one")
	}

	user, err := s.accounts.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.Auth, MsgUserNotFound, err)
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		metrics.RecordAuthEvent(eventChangePassword, metrics.OutcomeRejected)
		return apperr.New(apperr.Auth, MsgInvalidCredentials)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.Validation, "password cannot be hashed", err)
	}
	var plaintext string
	if s.opts.RetainPlaintext {
		plaintext = newPassword
	}
	version := s.now().UnixMilli()
	if err := s.accounts.UpdatePassword(ctx, user.ID, hash, plaintext, version); err != nil {
		return apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}

	metrics.RecordAuthEvent(eventChangePassword, metrics.OutcomeSuccess)
	s.log.Info("password changed", slog.String("user_id", user.ID))
	return nil
}

// Profile возвращает профиль пользователя и его действующую подписку.
func (s *AuthService) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	const op = "auth.Profile"
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &UserProfile{User: user.Public()}

	sub, err := s.accounts.GetActiveSubscription(ctx, user.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return nil, apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	default:
		sub.MonthsLeft = period.RemainingMonths(sub.StartDate, sub.EndDate, s.now().UTC())
		profile.Subscription = sub
	}
	return profile, nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "auth.GetUser"
	user, err := s.accounts.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrap(apperr.NotFound, MsgUserNotFound, err)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, msgInternal, fmt.Errorf("%s: %w", op, err))
	}
	return user, nil
}

// AdminView возвращает пользователя со всеми секретами.
func (s *AuthService) AdminView(ctx context.Context, userID string) (*models.AdminUser, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := user.Admin()
	return &view, nil
}
