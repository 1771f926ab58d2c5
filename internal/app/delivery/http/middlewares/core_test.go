package middlewares

import (
	"hospital-service/internal/pkg/constvars"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware(t *testing.T) {
	m, _ := newTestMiddlewares(t, new(MockUserUsecase))

	var seenID string
	var seenClient bool
	handler := m.RequestIDMiddleware(m.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		seenClient, _ = r.Context().Value(constvars.CONTEXT_IS_CLIENT_REQUEST_ID_KEY).(bool)
		w.Write([]byte("ok"))
	})))

	t.Run("Client supplied id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderXRequestID, "client-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "client-123", seenID)
		assert.True(t, seenClient)
		assert.Equal(t, "client-123", rr.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("Missing id is generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, strings.HasPrefix(seenID, constvars.REQUEST_ID_PREFIX))
		assert.False(t, seenClient)
		assert.Equal(t, seenID, rr.Header().Get(constvars.HeaderXRequestID))
	})
}

func TestBodyLimit(t *testing.T) {
	m, _ := newTestMiddlewares(t, new(MockUserUsecase))
	m.InternalConfig.App.RequestBodyLimitInMegabyte = 1

	handler := m.BodyLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	small := httptest.NewRecorder()
	handler.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNoContent, small.Code)

	large := httptest.NewRecorder()
	handler.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 2<<20))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, large.Code)
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	m, _ := newTestMiddlewares(t, new(MockUserUsecase))

	rr := httptest.NewRecorder()
	m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), constvars.ErrClientSomethingWrongWithApplication)
}
