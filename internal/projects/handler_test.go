package projects

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmoni-hris/harmoni-hris/internal/shared"
)

func TestRedirectWithFlash(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sm := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodPost, "/projects", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	h := &Handler{}
	res := httptest.NewRecorder()
	h.redirectWithFlash(res, req, "/projects", "success", "Proyek disimpan")

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/projects", res.Header().Get("Location"))
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Proyek disimpan", flash.Message)
}
