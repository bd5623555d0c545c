package registration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"felicity/internal/registration"
)

func TestMemoryCart(t *testing.T) {
	ctx := context.Background()
	cart := registration.NewMemoryCart(time.Hour)

	require.NoError(t, cart.Add(ctx, "u1", "ev1"))
	require.NoError(t, cart.Add(ctx, "u1", "ev2"))
	require.NoError(t, cart.Add(ctx, "u1", "ev2")) // set semantics

	ids, err := cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ev1", "ev2"}, ids)

	// Carts are per user.
	ids, err = cart.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, cart.Remove(ctx, "u1", "ev1"))
	ids, err = cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ev2"}, ids)

	require.NoError(t, cart.Clear(ctx, "u1"))
	ids, err = cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryCartExpiry(t *testing.T) {
	ctx := context.Background()
	cart := registration.NewMemoryCart(10 * time.Millisecond)

	require.NoError(t, cart.Add(ctx, "u1", "ev1"))
	time.Sleep(20 * time.Millisecond)

	ids, err := cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids, "expired cart reads back empty")
}
