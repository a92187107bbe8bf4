package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), Options{Addr: mr.Addr(), DB: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.DB(2).Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestNewReturnsClientOnPingFailure(t *testing.T) {
	addr := "127.0.0.1:1"
	client, err := New(context.Background(), Options{Addr: addr})
	require.Error(t, err)
	require.Contains(t, err.Error(), addr)
	require.NotNil(t, client)
	_ = client.Close()
}

func TestAsynqOptions(t *testing.T) {
	opt := Options{Addr: "redis:6379", Password: "pw", DB: 3}.Asynq()
	require.Equal(t, "redis:6379", opt.Addr)
	require.Equal(t, "pw", opt.Password)
	require.Equal(t, 3, opt.DB)
}
