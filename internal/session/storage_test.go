package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	v, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set(ctx, KeyToken, "abc"))
	require.NoError(t, s.Set(ctx, KeyScreen, "groups"))
	v, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Delete(ctx, KeyToken, KeyName))
	v, err = s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Empty(t, v)
	v, err = s.Get(ctx, KeyScreen)
	require.NoError(t, err)
	assert.Equal(t, "groups", v)
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStorage(t, NewFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, err := NewFile(path).Get(context.Background(), KeyScreen)
	require.NoError(t, err)
	assert.Equal(t, "groups", v)
}

func TestFile_corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := NewFile(path).Get(context.Background(), KeyToken)
	assert.Error(t, err)
}

func TestCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("td", cookie.NewStore([]byte("secret"))))
	r.GET("/set", func(c *gin.Context) {
		require.NoError(t, NewCookie(sessions.Default(c)).Set(c, KeyToken, "abc"))
		c.Status(http.StatusNoContent)
	})
	r.GET("/get", func(c *gin.Context) {
		v, _ := NewCookie(sessions.Default(c)).Get(c, KeyToken)
		c.String(http.StatusOK, v)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/set", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Body.String())
}

func TestCookie_concurrent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("td", cookie.NewStore([]byte("secret"))))
	r.GET("/", func(c *gin.Context) {
		st := NewCookie(sessions.Default(c))
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%2 == 0 {
					assert.NoError(t, st.Delete(c, KeyToken, KeyName))
					return
				}
				assert.NoError(t, st.Set(c, KeyScreen, "groups"))
				_, _ = st.Get(c, KeyToken)
			}(i)
		}
		wg.Wait()
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())
}
