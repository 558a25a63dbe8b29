// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, email verification, and
// password recovery.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkravetz/sixtyfix/internal/common"
	"github.com/dkravetz/sixtyfix/internal/logging"
	"github.com/dkravetz/sixtyfix/internal/server/auth"
	"github.com/dkravetz/sixtyfix/internal/server/config"
	"github.com/dkravetz/sixtyfix/internal/server/mail"
	"github.com/dkravetz/sixtyfix/internal/server/models"
	"github.com/dkravetz/sixtyfix/internal/server/repositories/repomanager"
)

// SignupResult reports the outcome of a registration. VerificationLink is
// set whenever a verification mail was composed, so callers can surface the
// raw link if delivery failed.
type SignupResult struct {
	User             *models.User
	MailDelivered    bool
	VerificationLink string
}

// UserService provides account operations:
// - Register: create users and trigger verification mail
// - Login: verify credentials and mint a session JWT
// - VerifyEmail / ResendVerification: confirm email ownership
// - ForgotPassword / ResetPassword: password recovery via signed links
type UserService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	issuer               *auth.Issuer
	notifier             mail.Notifier
	logger               logging.Logger
	jwtSecret            []byte
	sessionTokenValidity time.Duration
	baseURL              string
	requireVerification  bool
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer,
	notifier mail.Notifier, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                   db,
		repomanager:          m,
		issuer:               issuer,
		notifier:             notifier,
		logger:               logger.With("module", "users"),
		jwtSecret:            []byte(cfg.SecretKey),
		sessionTokenValidity: cfg.SessionTokenValidity,
		baseURL:              strings.TrimRight(cfg.BaseURL, "/"),
		requireVerification:  cfg.RequireEmailVerification,
	}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

// Register creates a new account. When email verification is required the
// user starts unverified and a verification link is mailed best-effort;
// otherwise the account is usable immediately.
func (s *UserService) Register(ctx context.Context, username, email, password, confirm string) (*SignupResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" || confirm == "" {
		return nil, validationError("all fields are required")
	}
	if len(username) < 3 {
		return nil, validationError("username must be at least 3 characters")
	}
	if len(password) < 6 {
		return nil, validationError("password must be at least 6 characters")
	}
	if password != confirm {
		return nil, validationError("passwords do not match")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   !s.requireVerification,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	result := &SignupResult{User: u}
	if s.requireVerification {
		delivered, link, err := s.sendVerificationMail(ctx, u)
		if err != nil {
			return nil, err
		}
		result.MailDelivered = delivered
		result.VerificationLink = link
	}

	return result, nil
}

// Login checks credentials for a username or email and returns a session
// token. Unverified accounts are rejected when verification is enforced,
// and silently promoted to verified otherwise.
func (s *UserService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	login = strings.TrimSpace(login)
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil && errors.Is(err, common.ErrorNotFound) {
		// emails are stored lowercase, retry lowered
		if lowered := strings.ToLower(login); lowered != login {
			user, err = repo.GetByLogin(ctx, lowered)
		}
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, common.ErrorUnauthorized
	}

	if !user.IsVerified {
		if s.requireVerification {
			return "", nil, common.ErrEmailNotVerified
		}
		if err := repo.SetVerified(ctx, user.ID); err != nil {
			return "", nil, common.ErrorInternal
		}
		user.IsVerified = true
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.sessionTokenValidity)
	if err != nil {
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}

	return token, user, nil
}

// VerifyEmail confirms an address from a signed verification link. The
// operation is idempotent: verifying an already verified user succeeds.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.issuer.Verify(token, auth.KindVerify, auth.VerifyTokenMaxAge)
	if err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return common.ErrorInternal
	}

	if err := repo.SetVerified(ctx, userID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// ResendVerification sends a fresh verification link for an existing
// unverified account. It never reveals whether the address exists: unknown
// or already verified addresses are a silent no-op. The link travels only
// in the mail body; an unauthenticated caller is never handed the token.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}
	if user.IsVerified {
		return nil
	}

	_, _, err = s.sendVerificationMail(ctx, user)
	return err
}

// ForgotPassword mails a password-reset link. Like ResendVerification it is
// neutral for unknown addresses and never returns the link or the token;
// with mail unconfigured the notifier logs the body server-side instead.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	token, err := s.issuer.Issue(auth.KindReset, user.ID)
	if err != nil {
		return fmt.Errorf("error issuing reset token: %w", err)
	}

	link := s.baseURL + "/auth/reset-password/" + token
	body := "To reset your password, open the link below:\n\n" + link +
		"\n\nThe link is valid for 1 hour. If you did not request a reset, ignore this message."
	if !s.notifier.Send(ctx, user.Email, "Reset your password", body) {
		s.logger.Warn(ctx, "reset mail not delivered", "user_id", user.ID)
	}

	return nil
}

// ResetPassword sets a new password from a signed reset link.
func (s *UserService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if len(password) < 6 {
		return validationError("password must be at least 6 characters")
	}
	if password != confirm {
		return validationError("passwords do not match")
	}

	userID, err := s.issuer.Verify(token, auth.KindReset, auth.ResetTokenMaxAge)
	if err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return common.ErrorInternal
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// DeleteAccount removes the user and, via cascade, every item they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// GetUser returns the account for an authenticated user id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

func (s *UserService) sendVerificationMail(ctx context.Context, user *models.User) (bool, string, error) {
	token, err := s.issuer.Issue(auth.KindVerify, user.ID)
	if err != nil {
		return false, "", fmt.Errorf("error issuing verification token: %w", err)
	}

	link := s.baseURL + "/auth/verify-email/" + token
	body := "Welcome, " + user.Username + "!\n\nConfirm your email address by opening the link below:\n\n" +
		link + "\n\nThe link is valid for 24 hours."
	delivered := s.notifier.Send(ctx, user.Email, "Verify your email", body)
	if !delivered {
		s.logger.Warn(ctx, "verification mail not delivered", "user_id", user.ID)
	}

	return delivered, link, nil
}
