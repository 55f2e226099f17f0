// Package store defines the key/value storage interface and implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store persists small values under string keys. It plays the role of the
// browser's local and session storage: every mutation writes a full snapshot.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// SessionKey scopes key to one browsing session.
func SessionKey(sessionID, key string) string {
	return "session/" + sessionID + "/" + key
}

// GetJSON loads key into v. A missing key returns ErrNotFound; a value that
// does not decode returns an error wrapping domain.ErrStorageRead.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStorageRead, key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
