package draftstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}()

	addr, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	store, err := NewRedisStore(RedisOptions{Addr: addr, TTL: time.Second})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load(ctx, "session-1", SignupKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "session-1", SignupKey, []byte(`{"firstName":"Ana"}`)))
	value, err := store.Load(ctx, "session-1", SignupKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Ana"}`, string(value))

	require.NoError(t, store.Clear(ctx, "session-1", SignupKey))
	_, err = store.Load(ctx, "session-1", SignupKey)
	assert.ErrorIs(t, err, ErrNotFound)

	// Redis expires the key on its own
	require.NoError(t, store.Save(ctx, "session-2", SignupKey, []byte(`{}`)))
	assert.Eventually(t, func() bool {
		_, err := store.Load(ctx, "session-2", SignupKey)
		return err == ErrNotFound
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRedisOptions_ClientOptions(t *testing.T) {
	ropt := RedisOptions{Addr: "cache:6379", Password: "pw", DB: 3, MaxRetries: 8}.clientOptions()
	assert.Equal(t, "cache:6379", ropt.Addr)
	assert.Equal(t, "pw", ropt.Password)
	assert.Equal(t, 3, ropt.DB)
	assert.Equal(t, 8, ropt.MaxRetries)
}
