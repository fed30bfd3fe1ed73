package adminauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	dErrors "mintgate/pkg/domain-errors"
)

func TestValidateAdminToken(t *testing.T) {
	service := New("test-signing-key")

	t.Run("valid token passes", func(t *testing.T) {
		token, err := service.IssueToken("ops", time.Hour)
		require.NoError(t, err)
		require.NoError(t, service.ValidateAdminToken(token))
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		err := service.ValidateAdminToken("not-a-jwt")
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key is rejected", func(t *testing.T) {
		other := New("different-key")
		token, err := other.IssueToken("ops", time.Hour)
		require.NoError(t, err)

		err = service.ValidateAdminToken(token)
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := service.IssueToken("ops", -time.Minute)
		require.NoError(t, err)

		err = service.ValidateAdminToken(token)
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("non-admin role is forbidden", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Role: "viewer",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		err = service.ValidateAdminToken(signed)
		require.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
