package account

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory. It is used in tests and local
// development where Postgres is unavailable.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[uuid.UUID]*Account)}
}

func cloneAccount(acc *Account) *Account {
	c := *acc
	c.PasswordHash = append([]byte(nil), acc.PasswordHash...)
	if acc.MFASecret != nil {
		s := *acc.MFASecret
		c.MFASecret = &s
	}
	return &c
}

func (m *MemoryStore) Create(ctx context.Context, acc *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if existing.Username == acc.Username {
			return ErrUsernameTaken
		}
	}

	m.accounts[acc.ID] = cloneAccount(acc)
	return nil
}

func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, acc := range m.accounts {
		if acc.Username == username {
			return cloneAccount(acc), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAccount(acc), nil
}

func (m *MemoryStore) MFASecret(ctx context.Context, id uuid.UUID) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if acc.MFASecret == nil {
		return nil, nil
	}
	s := *acc.MFASecret
	return &s, nil
}

func (m *MemoryStore) SetMFASecretIfAbsent(ctx context.Context, id uuid.UUID, secret string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[id]
	if !ok {
		return "", ErrNotFound
	}
	if acc.HasMFA() {
		return *acc.MFASecret, nil
	}

	acc.MFASecret = &secret
	return secret, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}
