package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/storeadmin/internal/shared"
)

// TokenIssuer signs bearer tokens for a subject id.
type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
}

// dummyHash is compared against when no usable account exists so failed
// logins cost one bcrypt comparison whether or not the email is registered.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("storeadmin-unknown-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	tokens  TokenIssuer
	compare func(hash, password []byte) error
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens, compare: bcrypt.CompareHashAndPassword}
}

// Authenticate validates email/password credentials. Unknown, inactive and
// mismatched accounts all yield shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Admin, error) {
	admin, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = s.compare(dummyHash(), []byte(password))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if admin.Status != shared.StatusActive {
		_ = s.compare(dummyHash(), []byte(password))
		return nil, shared.ErrInvalidCredentials
	}
	if err := s.compare([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return admin, nil
}

// Login authenticates and issues a bearer token for the admin.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	admin, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	token, expires, err := s.tokens.Issue(strconv.FormatInt(admin.ID, 10))
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expires, Admin: admin}, nil
}
