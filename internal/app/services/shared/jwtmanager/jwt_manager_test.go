package jwtmanager

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, secret string) *JWTManager {
	t.Helper()
	cfg := &config.InternalConfig{JWT: config.AppJWT{Secret: secret, ExpTimeInHour: 1}}
	manager, err := NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)
	return manager
}

func TestJWTManager(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: primitive.NewObjectID(), Role: constvars.RoleDoctor}

	t.Run("round trip keeps user, role and token id", func(t *testing.T) {
		manager := newTestManager(t, "secret")

		out, err := manager.CreateToken(ctx, user)
		require.NoError(t, err)
		assert.NotEmpty(t, out.TokenID)

		claims, err := manager.VerifyToken(ctx, out.Token)
		require.NoError(t, err)
		assert.Equal(t, out.TokenID, claims.ID)
		assert.Equal(t, constvars.RoleDoctor, claims.Role)

		actor, err := claims.Actor()
		require.NoError(t, err)
		assert.Equal(t, user.ID, actor.UserID)
		assert.False(t, actor.IsSystem())
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		out, err := newTestManager(t, "other").CreateToken(ctx, user)
		require.NoError(t, err)

		_, err = newTestManager(t, "secret").VerifyToken(ctx, out.Token)
		assert.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		manager := newTestManager(t, "secret")
		manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

		out, err := manager.CreateToken(ctx, user)
		require.NoError(t, err)

		_, err = manager.VerifyToken(ctx, out.Token)
		assert.Error(t, err)
	})

	t.Run("unsigned token is rejected", func(t *testing.T) {
		manager := newTestManager(t, "secret")
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: user.ID.Hex()}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.VerifyToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("empty secret fails construction", func(t *testing.T) {
		_, err := NewJWTManager(&config.InternalConfig{}, zap.NewNop())
		assert.Error(t, err)
	})
}
