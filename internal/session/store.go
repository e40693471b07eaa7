package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound means no live entry exists for the token: it either
	// expired naturally or was explicitly revoked.
	ErrNotFound = errors.New("session not found")

	// ErrUnavailable means the store could not be reached. Callers must
	// treat this as "cannot confirm validity", never as a pass.
	ErrUnavailable = errors.New("session store unavailable")
)

const keyPrefix = "session:"

// Store maps a token identifier to the owning user's ID for as long as
// the token is considered live. Natural TTL expiry is the only exit for
// normal expiry; Delete is the only mechanism for early revocation.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Put(ctx context.Context, tokenID string, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+tokenID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, tokenID string) (string, error) {
	userID, err := s.client.Get(ctx, keyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return userID, nil
}

// Delete revokes a token's entry. Deleting an absent key is not an
// error.
func (s *Store) Delete(ctx context.Context, tokenID string) error {
	if err := s.client.Del(ctx, keyPrefix+tokenID).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
