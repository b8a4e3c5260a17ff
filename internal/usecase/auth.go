package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/shiptrack/internal/auth"
	"github.com/ErlanBelekov/shiptrack/internal/domain"
	"github.com/ErlanBelekov/shiptrack/internal/repository"
)

// passwordHasher and tokenIssuer are the subsets of the auth package the
// usecase needs; tests may pass the real implementations or fakes.
type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, plain string) error
}

type tokenIssuer interface {
	Issue(id domain.Identity) (string, error)
	Parse(raw string) (domain.Identity, error)
}

type AuthUsecase struct {
	users  repository.UserRepository
	hasher passwordHasher
	tokens tokenIssuer
}

func NewAuthUsecase(users repository.UserRepository, hasher passwordHasher, tokens tokenIssuer) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

type RegisterInput struct {
	Name     string
	Address  string
	Email    string
	Password string
	Role     domain.Role
}

// Register creates a user with a bcrypt-hashed password and returns a signed token.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (string, error) {
	email := normalizeEmail(input.Email)

	_, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return "", domain.ErrDuplicateUser
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("find user by email: %w", err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	hashed, err := u.hasher.Hash(input.Password)
	if err != nil {
		return "", err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Name:         input.Name,
		Address:      input.Address,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return "", domain.ErrDuplicateUser
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	return u.tokens.Issue(domain.Identity{UserID: user.ID, Role: user.Role})
}

// Login checks the password against the stored hash and returns a signed token.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("find user by email: %w", err)
	}

	if err := u.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	return u.tokens.Issue(domain.Identity{UserID: user.ID, Role: user.Role})
}

// Verify returns the identity embedded in a valid token.
func (u *AuthUsecase) Verify(rawToken string) (domain.Identity, error) {
	return u.tokens.Parse(rawToken)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
