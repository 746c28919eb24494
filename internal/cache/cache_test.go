package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_SetGet(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	mr.FastForward(2 * time.Minute)
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_SetNX(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	assert.True(t, c.SetNX(ctx, "lock", []byte("1"), time.Minute))
	assert.False(t, c.SetNX(ctx, "lock", []byte("1"), time.Minute))

	mr.FastForward(time.Minute)
	assert.True(t, c.SetNX(ctx, "lock", []byte("1"), time.Minute))
}

func TestClient_SetMembers(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.AddToSet(ctx, "s", "a", time.Hour))
	require.NoError(t, c.AddToSet(ctx, "s", "b", time.Hour))
	assert.ElementsMatch(t, []string{"a", "b"}, c.Members(ctx, "s"))
	assert.Equal(t, time.Hour, mr.TTL("s"))

	require.NoError(t, c.Delete(ctx, "s"))
	assert.Empty(t, c.Members(ctx, "s"))
}

func TestClient_JSON(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	type page struct{ Total int }
	c.SetJSON(ctx, "p", page{Total: 3}, time.Minute)

	var got page
	assert.True(t, c.GetJSON(ctx, "p", &got))
	assert.Equal(t, 3, got.Total)
	assert.False(t, c.GetJSON(ctx, "missing", &got))
}

func TestClient_Unavailable(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()
	mr.Close()

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, c.SetNX(ctx, "lock", []byte("1"), time.Minute))
	assert.Nil(t, c.Members(ctx, "s"))
}

func TestClient_Nil(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.NoError(t, c.Ping(ctx))
	assert.True(t, c.SetNX(ctx, "lock", []byte("1"), time.Minute))
	assert.NoError(t, c.AddToSet(ctx, "s", "a", time.Minute))
	assert.Nil(t, c.Members(ctx, "s"))
	assert.NoError(t, c.Close())
}
