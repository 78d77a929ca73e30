package user

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"bookstore-api/internal/config"
	domainUser "bookstore-api/internal/domain/user"
	"bookstore-api/internal/logger"
	"bookstore-api/internal/metrics"
	"bookstore-api/internal/query"
	appErrors "bookstore-api/pkg/errors"
	"bookstore-api/pkg/utils"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = 10 * time.Minute

var (
	ErrUserNotFound    = appErrors.NotFound("No user found with that ID")
	ErrNoUserWithEmail = appErrors.NotFound("There is no user with that email address.")
	ErrPasswordRoute   = appErrors.BadRequest("This route is not for password updates. Please use /updateMyPassword.")
	ErrNothingToUpdate = appErrors.BadRequest("Please provide at least one of: name, email, photo.")
)

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	Sign(userID string) (string, error)
}

// Mailer delivers the out-of-band part of the password reset flow.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// Service implements user use cases
type Service struct {
	userRepo domainUser.Repository
	hasher   domainUser.PasswordHasher
	tokens   TokenIssuer
	mailer   Mailer
	config   *config.Config
	now      func() time.Time
}

// NewService creates a new user service
func NewService(
	userRepo domainUser.Repository,
	hasher domainUser.PasswordHasher,
	tokens TokenIssuer,
	mailer Mailer,
	cfg *config.Config,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		config:   cfg,
		now:      time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResult, error) {
	u := &domainUser.User{
		Name:  req.Name,
		Email: req.Email,
		Photo: req.Photo,
		Role:  domainUser.RoleUser,
	}
	u.SetPassword(req.Password, req.PasswordConfirm)

	if err := s.userRepo.Create(ctx, u); err != nil {
		logger.FromContext(ctx).Warn("Signup rejected",
			zap.String("email", utils.SanitizeEmail(req.Email)),
			zap.String("event", "signup_failed"),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordAuthEvent(metrics.AuthSignup)
	logger.FromContext(ctx).Info("User signed up",
		zap.String("user_id", u.HexID()),
		zap.String("email", u.Email),
		zap.String("event", "user_signed_up"),
	)

	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, appErrors.ErrMissingCredentials
	}

	u, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if stderrors.Is(err, domainUser.ErrUserNotFound) {
			metrics.RecordAuthEvent(metrics.AuthLoginFailed)
			logger.FromContext(ctx).Warn("Login attempt with unknown email",
				zap.String("email", utils.SanitizeEmail(req.Email)),
				zap.String("event", "login_failed_unknown_email"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Compare(u.Password, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}
	if !ok {
		metrics.RecordAuthEvent(metrics.AuthLoginFailed)
		logger.FromContext(ctx).Warn("Login attempt with invalid password",
			zap.String("user_id", u.HexID()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	metrics.RecordAuthEvent(metrics.AuthLogin)
	logger.FromContext(ctx).Info("User logged in",
		zap.String("user_id", u.HexID()),
		zap.String("role", string(u.Role)),
		zap.String("event", "login_success"),
	)

	return s.issue(u)
}

// ForgotPassword stores the hash of a fresh reset token and mails the raw
// token appended to resetURLBase. A failed dispatch rolls the token back.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest, resetURLBase string) error {
	u, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if stderrors.Is(err, domainUser.ErrUserNotFound) {
			logger.FromContext(ctx).Info("Password reset requested for unknown email",
				zap.String("email", utils.SanitizeEmail(req.Email)),
				zap.String("event", "password_reset_unknown_email"),
			)
			return ErrNoUserWithEmail
		}
		return err
	}

	raw, hashed, err := utils.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expires := s.now().UTC().Add(ResetTokenTTL)
	u.SetResetToken(hashed, expires)
	if err := s.userRepo.Save(ctx, u); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, u.Email, resetURLBase+url.PathEscape(raw)); err != nil {
		logger.FromContext(ctx).Error("Failed to send password reset email",
			zap.String("user_id", u.HexID()),
			zap.String("event", "password_reset_dispatch_failed"),
			zap.Error(err),
		)

		u.ClearResetToken()
		if rollbackErr := s.userRepo.Save(ctx, u); rollbackErr != nil {
			logger.FromContext(ctx).Error("Failed to roll back password reset token",
				zap.String("user_id", u.HexID()),
				zap.String("event", "password_reset_rollback_failed"),
				zap.Error(rollbackErr),
			)
		}
		return appErrors.ErrEmailDispatch
	}

	metrics.RecordAuthEvent(metrics.AuthResetRequested)
	logger.FromContext(ctx).Info("Password reset token issued",
		zap.String("user_id", u.HexID()),
		zap.Time("expires_at", expires),
		zap.String("event", "password_reset_token_issued"),
	)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, rawToken string, req *ResetPasswordRequest) (*AuthResult, error) {
	u, err := s.userRepo.FindByResetToken(ctx, utils.HashResetToken(rawToken), s.now().UTC())
	if err != nil {
		if stderrors.Is(err, domainUser.ErrUserNotFound) {
			logger.FromContext(ctx).Warn("Password reset with invalid or expired token",
				zap.String("event", "password_reset_failed_invalid_token"),
			)
			return nil, appErrors.ErrResetTokenInvalid
		}
		return nil, err
	}

	u.SetPassword(req.Password, req.PasswordConfirm)
	u.ClearResetToken()
	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}

	metrics.RecordAuthEvent(metrics.AuthResetCompleted)
	logger.FromContext(ctx).Info("Password reset successfully",
		zap.String("user_id", u.HexID()),
		zap.String("event", "password_reset_success"),
	)

	return s.issue(u)
}

func (s *Service) UpdateMyPassword(ctx context.Context, userID string, req *UpdatePasswordRequest) (*AuthResult, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Compare(u.Password, req.CurrentPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}
	if !ok {
		logger.FromContext(ctx).Warn("Password update with wrong current password",
			zap.String("user_id", u.HexID()),
			zap.String("event", "password_update_failed_wrong_current"),
		)
		return nil, appErrors.ErrWrongCurrentPassword
	}

	u.SetPassword(req.Password, req.PasswordConfirm)
	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}

	metrics.RecordAuthEvent(metrics.AuthPasswordUpdated)
	logger.FromContext(ctx).Info("Password updated",
		zap.String("user_id", u.HexID()),
		zap.String("event", "password_updated"),
	)

	return s.issue(u)
}

func (s *Service) UpdateMe(ctx context.Context, userID string, req *UpdateMeRequest) (*domainUser.User, error) {
	if req.Password != nil || req.PasswordConfirm != nil {
		return nil, ErrPasswordRoute
	}

	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !applyProfile(u, req.Name, req.Email, req.Photo) {
		return nil, ErrNothingToUpdate
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Profile updated",
		zap.String("user_id", u.HexID()),
		zap.String("event", "profile_updated"),
	)
	return u, nil
}

// DeleteMe deactivates the caller's account. The record stays in the store.
func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return s.mapNotFound(err)
	}

	metrics.RecordAuthEvent(metrics.AuthUserDeactivated)
	logger.FromContext(ctx).Info("User deactivated",
		zap.String("user_id", userID),
		zap.String("event", "user_deactivated"),
	)
	return nil
}

// List runs the query features over the user collection. Inactive accounts
// are only visible to an administrator who filters on active explicitly.
func (s *Service) List(ctx context.Context, caller *domainUser.User, params url.Values) ([]query.Document, error) {
	spec, err := query.Build(query.All(), params,
		query.WithSchema(domainUser.QuerySchema),
		query.Strict(s.config.Query.StrictFilters),
	)
	if err != nil {
		return nil, err
	}

	includeInactive := caller != nil && caller.IsAdmin() && params.Has("active")
	return s.userRepo.Find(ctx, spec, includeInactive)
}

func (s *Service) Get(ctx context.Context, id string) (*domainUser.User, error) {
	return s.getUser(ctx, id)
}

func (s *Service) Update(ctx context.Context, caller *domainUser.User, id string, req *UpdateUserRequest) (*domainUser.User, error) {
	if req.Password != nil || req.PasswordConfirm != nil {
		return nil, ErrPasswordRoute
	}
	if (req.Role != nil || req.Active != nil) && (caller == nil || !caller.IsAdmin()) {
		metrics.RecordAuthEvent(metrics.AuthAccessForbidden)
		return nil, appErrors.ErrForbidden
	}

	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := applyProfile(u, req.Name, req.Email, req.Photo)
	if req.Role != nil {
		u.Role = *req.Role
		changed = true
	}
	if req.Active != nil {
		u.Active = *req.Active
		changed = true
	}
	if !changed {
		return u, nil
	}

	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, s.mapNotFound(err)
	}

	logger.FromContext(ctx).Info("User updated",
		zap.String("user_id", u.HexID()),
		zap.String("event", "user_updated"),
	)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return s.mapNotFound(err)
	}

	logger.FromContext(ctx).Info("User deleted",
		zap.String("user_id", id),
		zap.String("event", "user_deleted"),
	)
	return nil
}

func (s *Service) getUser(ctx context.Context, id string) (*domainUser.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return u, nil
}

func (s *Service) mapNotFound(err error) error {
	if stderrors.Is(err, domainUser.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *Service) issue(u *domainUser.User) (*AuthResult, error) {
	token, err := s.tokens.Sign(u.HexID())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}
