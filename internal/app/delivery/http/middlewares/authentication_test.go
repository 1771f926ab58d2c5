package middlewares

import (
	"context"
	"errors"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/shared/jwtmanager"
	"hospital-service/internal/pkg/constvars"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MockUserUsecase struct {
	contracts.UserUsecase
	mock.Mock
}

func (m *MockUserUsecase) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func newTestMiddlewares(t *testing.T, userUsecase contracts.UserUsecase) (*Middlewares, *jwtmanager.JWTManager) {
	t.Helper()

	internalConfig := &config.InternalConfig{
		App: config.App{MaxRequests: 100},
		JWT: config.AppJWT{Secret: "middleware-test-secret", ExpTimeInHour: 1},
	}
	manager, err := jwtmanager.NewJWTManager(internalConfig, zap.NewNop())
	require.NoError(t, err)

	return NewMiddlewares(zap.NewNop(), internalConfig, manager, userUsecase), manager
}

func issueToken(t *testing.T, manager *jwtmanager.JWTManager, role string) (string, primitive.ObjectID) {
	t.Helper()

	user := &models.User{ID: primitive.NewObjectID(), Role: role}
	output, err := manager.CreateToken(context.Background(), user)
	require.NoError(t, err)
	return output.Token, user.ID
}

func actorEcho(t *testing.T, seen *models.Actor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := r.Context().Value(constvars.CONTEXT_ACTOR_KEY).(models.Actor)
		require.True(t, ok)
		*seen = actor
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	userUsecase := new(MockUserUsecase)
	m, manager := newTestMiddlewares(t, userUsecase)

	t.Run("Valid token puts actor in context", func(t *testing.T) {
		token, userID := issueToken(t, manager, constvars.RoleDoctor)
		userUsecase.On("IsTokenRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()

		var seen models.Actor
		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasTokenID := r.Context().Value(constvars.CONTEXT_TOKEN_ID_KEY).(string)
			_, hasExpiry := r.Context().Value(constvars.CONTEXT_TOKEN_EXPIRY_KEY).(time.Time)
			assert.True(t, hasTokenID)
			assert.True(t, hasExpiry)
			actorEcho(t, &seen).ServeHTTP(w, r)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, userID, seen.UserID)
		assert.Equal(t, constvars.RoleDoctor, seen.Role)
	})

	t.Run("Missing token", func(t *testing.T) {
		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Revoked token", func(t *testing.T) {
		token, _ := issueToken(t, manager, constvars.RolePatient)
		userUsecase.On("IsTokenRevoked", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()

		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Revocation lookup failure", func(t *testing.T) {
		token, _ := issueToken(t, manager, constvars.RolePatient)
		userUsecase.On("IsTokenRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, errors.New("redis down")).Once()

		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	userUsecase.AssertExpectations(t)
}

func TestOptionalAuthenticate(t *testing.T) {
	userUsecase := new(MockUserUsecase)
	m, _ := newTestMiddlewares(t, userUsecase)

	t.Run("Anonymous request runs as system actor", func(t *testing.T) {
		var seen models.Actor
		rr := httptest.NewRecorder()
		m.OptionalAuthenticate(actorEcho(t, &seen)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, seen.IsSystem())
		assert.Nil(t, seen.Ref())
	})

	t.Run("Malformed token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+"not-a-jwt")
		rr := httptest.NewRecorder()
		m.OptionalAuthenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	m, _ := newTestMiddlewares(t, new(MockUserUsecase))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guarded := m.RequireRoles(constvars.RoleAdmin, constvars.RoleDoctor)(ok)

	tests := []struct {
		name  string
		actor *models.Actor
		code  int
	}{
		{name: "Admin allowed", actor: actorPtr(models.NewUserActor(primitive.NewObjectID(), constvars.RoleAdmin)), code: http.StatusNoContent},
		{name: "Doctor allowed", actor: actorPtr(models.NewUserActor(primitive.NewObjectID(), constvars.RoleDoctor)), code: http.StatusNoContent},
		{name: "Patient forbidden", actor: actorPtr(models.NewUserActor(primitive.NewObjectID(), constvars.RolePatient)), code: http.StatusForbidden},
		{name: "System actor forbidden", actor: actorPtr(models.SystemActor), code: http.StatusForbidden},
		{name: "No actor", actor: nil, code: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(context.WithValue(req.Context(), constvars.CONTEXT_ACTOR_KEY, *tt.actor))
			}
			rr := httptest.NewRecorder()
			guarded.ServeHTTP(rr, req)
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func actorPtr(actor models.Actor) *models.Actor {
	return &actor
}
