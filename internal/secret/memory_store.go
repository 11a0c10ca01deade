package secret

import (
	"context"
	"sync"

	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
)

type MemoryStore struct {
	mu      sync.Mutex
	secrets map[Key]shuffle.SeedSecret
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: map[Key]shuffle.SeedSecret{}}
}

func (s *MemoryStore) Put(_ context.Context, key Key, secret shuffle.SeedSecret) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.secrets[key]; ok {
		return ErrSecretExists
	}
	s.secrets[key] = secret
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key Key) (shuffle.SeedSecret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secret, ok := s.secrets[key]
	if !ok {
		return shuffle.SeedSecret{}, ErrSecretUnavailable
	}
	return secret, nil
}

func (s *MemoryStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.secrets, key)
	return nil
}
