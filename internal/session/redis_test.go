package session

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты Redis-хранилища: поднимают redis:7-alpine через testcontainers-go.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/session -run Redis -v -count=1

func startRedis(t *testing.T) (string, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "6379/tcp")
	url := fmt.Sprintf("redis://%s:%s/0", host, port.Port())

	return url, func() { _ = c.Terminate(context.Background()) }
}

func TestIntegration_Redis_Contract(t *testing.T) {
	url, cleanup := startRedis(t)
	defer cleanup()

	st, err := NewRedis(context.Background(), url, "test:session")
	require.NoError(t, err)
	defer st.Close()

	storeContract(t, st)
}

// TestIntegration_Redis_HalfHash_ReadsAsEmpty — хэш с одним полем (записанный
// кем-то в обход Store) читается как отсутствие сессии.
func TestIntegration_Redis_HalfHash_ReadsAsEmpty(t *testing.T) {
	url, cleanup := startRedis(t)
	defer cleanup()

	ctx := context.Background()
	st, err := NewRedis(ctx, url, "")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.rdb.HSet(ctx, DefaultRedisKey, SlotAccessToken, "a").Err())

	got, err := st.Get(ctx)
	require.NoError(t, err)
	require.True(t, got.Empty())
}
