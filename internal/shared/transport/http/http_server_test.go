package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"OpenFront/internal/shared/transport/http/middleware"
	"OpenFront/modules/kit/logx"

	"github.com/gin-gonic/gin"
)

func TestNewHttpServer_Healthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := NewHttpServer(":0", gin.New(), logx.Nop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	s.Handler().ServeHTTP(w, req)

	if w.Code != nethttp.StatusOK {
		t.Fatalf("unexpected status code: got=%d want=%d", w.Code, nethttp.StatusOK)
	}
}

func TestNewHttpServer_限流只作用于业务路由(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := NewHttpServer(":0", gin.New(), logx.Nop(), middleware.RateLimit(middleware.NewIPLimiter(0.001, 1)))
	s.Group().GET("/api/ping", func(c *gin.Context) { c.JSON(nethttp.StatusOK, gin.H{"code": 0}) })

	serve := func(path string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(nethttp.MethodGet, path, nil)
		req.RemoteAddr = "10.1.1.1:80"
		s.Handler().ServeHTTP(w, req)
		return w.Code
	}
	if got := serve("/api/ping"); got != nethttp.StatusOK {
		t.Fatalf("期望首次请求放行, got=%d", got)
	}
	if got := serve("/api/ping"); got != nethttp.StatusTooManyRequests {
		t.Fatalf("期望第二次请求被限流, got=%d", got)
	}
	if got := serve("/healthz"); got != nethttp.StatusOK {
		t.Fatalf("期望 /healthz 不受限流影响, got=%d", got)
	}
}
