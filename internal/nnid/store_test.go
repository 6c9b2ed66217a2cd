package nnid

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", filepath.Join(t.TempDir(), "nnid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Bob.Smith-01": "bobsmith01",
		"jo_hn":        "john",
		"ABC":          "abc",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestLookup(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	data := []byte{0x03, 0x00, 0x00, 0x40}

	require.NoError(t, s.Put(ctx, "Some_User", data))

	got, err := s.Lookup(ctx, "some-user")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = s.Lookup(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutReplaces(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "user", []byte{1}))
	require.NoError(t, s.Put(ctx, "USER", []byte{2}))

	got, err := s.Lookup(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, got)
}

func TestMigrateTwice(t *testing.T) {
	s := openStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}
