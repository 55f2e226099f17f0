package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresStoreRejectsDriverSuffix(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), "postgresql+asyncpg://u:p@h/db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_URL")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	key := SessionKey("pg-test", "mock-interview-progress")
	require.NoError(t, s.Set(ctx, key, []byte(`{"currentIndex":1}`)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentIndex":1}`, string(got))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}
