package hashstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/qmldiff/internal/hashtab"
)

func TestConnect(t *testing.T) {
	tests := []struct {
		name          string
		dsn           func(t *testing.T) string
		expectedError bool
		errorContains string
	}{
		{
			name:          "in-memory database",
			dsn:           func(t *testing.T) string { return ":memory:" },
			expectedError: false,
		},
		{
			name: "file database in nested directory",
			dsn: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nested", "qml.hashtab.db")
			},
			expectedError: false,
		},
		{
			name:          "unreachable remote libsql URL",
			dsn:           func(t *testing.T) string { return "libsql://127.0.0.1:19999" },
			expectedError: true,
			errorContains: "hashstore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Connect(tt.dsn(t), "", false)
			if tt.expectedError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, store)
			defer store.Close()
		})
	}
}

func TestSyncAndLoadRoundTrip(t *testing.T) {
	store, err := Connect(":memory:", "", false)
	require.NoError(t, err)
	defer store.Close()

	entries := []hashtab.Entry{
		{Hash: 1, Value: "Item"},
		{Hash: 2, Value: "Text"},
	}
	require.NoError(t, store.Sync(context.Background(), entries))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	byHash := map[uint64]string{}
	for _, e := range loaded {
		byHash[e.Hash] = e.Value
	}
	assert.Equal(t, "Item", byHash[1])
	assert.Equal(t, "Text", byHash[2])
}

func TestSyncUpsertsExistingHash(t *testing.T) {
	store, err := Connect(":memory:", "", false)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Sync(ctx, []hashtab.Entry{{Hash: 1, Value: "Old"}}))
	require.NoError(t, store.Sync(ctx, []hashtab.Entry{{Hash: 1, Value: "New"}}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "New", loaded[0].Value)
}

func TestSyncEmptyEntriesIsNoop(t *testing.T) {
	store, err := Connect(":memory:", "", false)
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Sync(context.Background(), nil))
}
