package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Avatar   *string
}

type Session struct {
	User  *domain.User
	Token string
}

type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, caller security.Identity) (*domain.User, error)
	ChangeRole(ctx context.Context, userID uint, role string) (*domain.User, error)
}

type authUseCase struct {
	users  domain.UserRepository
	tokens *security.TokenManager
	logger *zap.SugaredLogger
}

func NewAuthUseCase(users domain.UserRepository, tokens *security.TokenManager, logger *zap.SugaredLogger) AuthUseCase {
	return &authUseCase{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a sales user. The very first account becomes admin so a
// fresh installation can be administered.
func (uc *authUseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", domain.ErrConflict, email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := domain.RoleSales
	if _, total, err := uc.users.List(ctx, domain.ListQuery{Limit: 1}); err == nil && total == 0 {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Avatar:       in.Avatar,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Infow("user registered",
		logging.KeyCategory, logging.General,
		logging.KeySubCategory, logging.Insert,
		"user_id", user.ID,
		"role", user.Role,
	)
	return user, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := security.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := uc.tokens.Generate(security.Identity{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Session{User: user, Token: token}, nil
}

func (uc *authUseCase) Me(ctx context.Context, caller security.Identity) (*domain.User, error) {
	return uc.users.GetByID(ctx, caller.UserID)
}

func (uc *authUseCase) ChangeRole(ctx context.Context, userID uint, role string) (*domain.User, error) {
	if !domain.IsValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
