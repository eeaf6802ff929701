package auth_test

import (
	"context"
	"testing"

	"github.com/mgiroux/ticketd/auth"
	"github.com/stretchr/testify/assert"
)

func TestIdentityContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		identity := TestIdentity{id: 7, username: "alice", email: "alice@x.com"}

		ctx := auth.WithIdentity(context.Background(), identity)
		got, ok := auth.IdentityFromContext(ctx)

		assert.True(t, ok)
		assert.Equal(t, int64(7), got.ID())
	})

	t.Run("empty context", func(t *testing.T) {
		got, ok := auth.IdentityFromContext(context.Background())
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}
