package redis

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/walkin-api/internal/model"
)

// Runs against a real server when WALKIN_TEST_REDIS_URL is set.
func TestBackupCache(t *testing.T) {
	url := os.Getenv("WALKIN_TEST_REDIS_URL")
	if url == "" {
		t.Skip("WALKIN_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := NewClient(ctx, Config{URL: url})
	require.NoError(t, err)
	defer client.Close()

	key := "walkin:test:" + t.Name()
	require.NoError(t, client.Del(ctx, key).Err())
	defer client.Del(ctx, key)

	logger := zerolog.Nop()
	cache := NewBackupCache(client, key, &logger)

	for _, id := range []string{"a", "b"} {
		require.NoError(t, cache.Append(ctx, &model.PatientRecord{ID: id, PatientNumber: "GUE-1", Type: model.PatientTypeGuest}))
	}

	entries, err := cache.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var first model.PatientRecord
	require.NoError(t, json.Unmarshal(entries[0], &first))
	assert.Equal(t, "a", first.ID)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(context.Background(), Config{URL: "not-a-url"})
	assert.Error(t, err)
}
