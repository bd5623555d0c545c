//go:build integration

package registration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"felicity/internal/registration"
	"felicity/pkg/testutil/containers"
)

func TestRedisCart(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	cart := registration.NewRedisCart(rc.Client, time.Hour)

	require.NoError(t, cart.Add(ctx, "u1", "ev1"))
	require.NoError(t, cart.Add(ctx, "u1", "ev2"))
	require.NoError(t, cart.Add(ctx, "u1", "ev2"))

	ids, err := cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ev1", "ev2"}, ids)

	require.NoError(t, cart.Remove(ctx, "u1", "ev1"))
	ids, err = cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ev2"}, ids)

	require.NoError(t, cart.Clear(ctx, "u1"))
	ids, err = cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisCartTTL(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	require.NoError(t, rc.FlushAll(ctx))

	cart := registration.NewRedisCart(rc.Client, time.Second)
	require.NoError(t, cart.Add(ctx, "u1", "ev1"))

	ttl, err := rc.Client.TTL(ctx, "cart:u1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0), "cart key carries a TTL")

	// Every write refreshes the window.
	require.NoError(t, cart.Add(ctx, "u1", "ev2"))
	ttl2, err := rc.Client.TTL(ctx, "cart:u1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl2, time.Duration(0))
}
