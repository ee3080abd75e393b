package utils_test

import (
	"testing"

	"casino_ledger/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Run("should carry the user claims through generate and parse", func(t *testing.T) {
		token, err := utils.GenerateJWT(7, "alice", "secret")
		require.NoError(t, err)

		claims, err := utils.ParseJWT(token, "secret")
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		token, err := utils.GenerateJWT(7, "alice", "secret")
		require.NoError(t, err)

		_, err = utils.ParseJWT(token, "other-secret")
		assert.Error(t, err)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := utils.ParseJWT("not-a-token", "secret")
		assert.Error(t, err)
	})
}
