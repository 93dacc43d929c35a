package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/logger"
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// Session is returned by signup and login.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

// Service handles signup, login and token lookups.
type Service struct {
	users  UserRepository
	tokens *Tokens
	logger logger.Logger
}

func NewService(users UserRepository, tokens *Tokens, log logger.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: log}
}

// Tokens exposes the token verifier used by the HTTP middleware.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Signup creates an account and opens a session.
func (s *Service) Signup(ctx context.Context, email, name, password string) (Session, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return Session{}, domain.NewValidationError("email", "email address is invalid")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(addr.Address, "@", 2)[0]
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	u, err := s.users.Create(ctx, domain.User{Email: addr.Address, Name: name, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return Session{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return Session{}, err
	}

	s.logger.Info("user signed up", logger.String("user_id", u.ID))
	return s.open(u)
}

// Login checks credentials. Unknown email and wrong password look the same.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return Session{}, err
	}
	if err := CheckPassword(u.PasswordHash, password); err != nil {
		s.logger.Warn("failed login", logger.String("user_id", u.ID))
		return Session{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	return s.open(u)
}

// Me returns the account behind a user id taken from a verified token.
func (s *Service) Me(ctx context.Context, userID string) (domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *Service) open(u domain.User) (Session, error) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}
