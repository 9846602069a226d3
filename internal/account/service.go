package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// maxUsernameLength bounds usernames at registration.
const maxUsernameLength = 50

// Service implements registration and password verification on top of a
// Store. Passwords are hashed with bcrypt.
type Service struct {
	store      Store
	bcryptCost int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithBcryptCost overrides the bcrypt cost factor.
func WithBcryptCost(cost int) ServiceOption {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		panic("WithBcryptCost: cost out of range")
	}
	return func(s *Service) { s.bcryptCost = cost }
}

// NewService creates an account service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParams carries the registration form fields.
type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Role      Role
}

func (p *RegisterParams) validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return errors.Join(ErrInvalidInput, errors.New("username is required"))
	}
	if len(p.Username) > maxUsernameLength {
		return errors.Join(ErrInvalidInput, errors.New("username too long"))
	}
	if p.Password == "" {
		return errors.Join(ErrInvalidInput, errors.New("password is required"))
	}
	if p.Role == "" {
		p.Role = RoleStandard
	}
	if !p.Role.Valid() {
		return errors.Join(ErrInvalidInput, errors.New("unknown role"))
	}
	return nil
}

// Register creates a new account with a hashed password. The TOTP secret is
// left unset; enrollment happens on first login.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Account, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	acc := &Account{
		ID:           uuid.New(),
		Username:     params.Username,
		PasswordHash: hash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Role:         params.Role,
	}

	if err := s.store.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// VerifyPassword checks a username/password pair. Username lookups are
// case-sensitive. Unknown usernames and wrong passwords both return
// ErrInvalidCredentials.
func (s *Service) VerifyPassword(ctx context.Context, username, password string) (*Account, error) {
	acc, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

// Delete removes an account. Owned records go with it via cascading
// foreign keys.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
