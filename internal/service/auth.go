package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/auth"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/repository"
)

// AuthService registers franchisees and checks their credentials.
// Setting and clearing the session cookie is the handler's job.
type AuthService struct {
	users      repository.UserRepository
	passwords  *auth.PasswordService
	activities *ActivityService
	logger     *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	activities *ActivityService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		passwords:  passwords,
		activities: activities,
		logger:     logger,
	}
}

// RegisterInput is a new franchisee account.
type RegisterInput struct {
	Username      string
	Password      string
	FranchiseName string
	FranchiseeID  string
	Location      string
}

// Register creates an account. Username and franchisee ID must both be
// unused; the storage layer enforces that too, so a race between two
// registrations still ends in apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FranchiseeID = strings.TrimSpace(in.FranchiseeID)
	in.FranchiseName = strings.TrimSpace(in.FranchiseName)
	in.Location = strings.TrimSpace(in.Location)

	if in.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if in.FranchiseeID == "" {
		return nil, apperror.ValidationFailed("franchiseeId", "franchisee ID is required")
	}
	if in.FranchiseName == "" {
		return nil, apperror.ValidationFailed("franchiseName", "franchise name is required")
	}
	if err := auth.CheckPolicy(in.Password); err != nil {
		return nil, apperror.ValidationFailed("password", strings.TrimPrefix(err.Error(), "auth: "))
	}

	if _, err := s.users.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, apperror.Conflict("user", "username", in.Username)
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("checking username: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:      in.Username,
		Password:      hash,
		FranchiseName: in.FranchiseName,
		FranchiseeID:  in.FranchiseeID,
		Location:      in.Location,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("franchisee registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	s.activities.Record(ctx, user.ID, model.ActionRegistered, model.EntityUser, user.ID,
		map[string]any{"franchiseeId": user.FranchiseeID})

	return user, nil
}

// Login returns the user for valid credentials. Unknown usernames and
// wrong passwords produce the same error and take the same time.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	invalid := apperror.Unauthorized("invalid username or password")

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if apperror.IsNotFound(err) {
		_ = s.passwords.VerifyMissing(password)
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("failed login", slog.String("username", user.Username))
			return nil, invalid
		}
		return nil, err
	}
	return user, nil
}

// CurrentUser loads the account behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}
