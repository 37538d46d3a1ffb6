// Package token holds the session token between requests.
package token

import (
	"context"
	"fmt"

	"bookkeeping/internal/log"
	"bookkeeping/internal/storage"
)

// Key is the storage slot the session token lives in.
const Key = "token"

// Store reads and writes the session token in durable storage. It is passed
// explicitly to everything that needs the token; there is no package-level
// instance.
type Store struct {
	kv     storage.KV
	logger *log.Logger
}

func NewStore(kv storage.KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		kv:     kv,
		logger: logger.WithComponent(log.ComponentToken),
	}
}

// Get returns the current token, or "" when there is none.
func (s *Store) Get(ctx context.Context) (string, error) {
	tok, _, err := s.kv.Get(ctx, Key)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return tok, nil
}

// Set replaces the stored token. Only the login flow should call it.
func (s *Store) Set(ctx context.Context, tok string) error {
	if err := s.kv.Set(ctx, Key, tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	s.logger.DebugContext(ctx, "Session token stored", log.FieldOperation, log.OpSet)
	return nil
}

// Clear removes the token. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.logger.DebugContext(ctx, "Session token cleared", log.FieldOperation, log.OpClear)
	return nil
}

// ClearSession wipes every slot of local session state, the token included.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.InfoContext(ctx, "Local session state erased", log.FieldOperation, log.OpClear)
	return nil
}
