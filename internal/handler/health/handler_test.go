package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestReadinessCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	redisCheck := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

	t.Run("all up", func(t *testing.T) {
		h := NewHandler(map[string]Check{
			"redis":    redisCheck,
			"postgres": func(context.Context) error { return nil },
		})
		r := gin.New()
		h.RegisterRoutes(r.Group(""))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"UP","components":{"postgres":"UP","redis":"UP"}}`, w.Body.String())
	})

	t.Run("one down", func(t *testing.T) {
		h := NewHandler(map[string]Check{
			"redis": redisCheck,
			"mongo": func(context.Context) error { return errors.New("no reachable servers") },
		})
		r := gin.New()
		h.RegisterRoutes(r.Group(""))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"DOWN","components":{"mongo":"DOWN","redis":"UP"}}`, w.Body.String())
	})
}

func TestLivenessCheck(t *testing.T) {
	r := gin.New()
	NewHandler(nil).RegisterRoutes(r.Group(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
