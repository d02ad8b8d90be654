package http

import (
	"OpenFront/internal/shared/transport/http/middleware"
	"OpenFront/modules/kit/logx"
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Server struct {
	engine *gin.Engine
	group  *gin.RouterGroup
	srv    *nethttp.Server
}

// NewHttpServer 挂上 Cors/AccessLog 和 /healthz；extra 只作用于业务路由组（如限流）。
func NewHttpServer(add string, engine *gin.Engine, logger logx.Logger, extra ...gin.HandlerFunc) *Server {
	if engine == nil {
		engine = gin.New()
		engine.Use(gin.Recovery())
	}
	engine.Use(middleware.Cors())
	engine.Use(middleware.AccessLog(logx.OrNop(logger)))
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		engine: engine,
		group:  engine.Group("", extra...),
		srv: &nethttp.Server{
			Addr:              add,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start 启动 HTTP 服务（阻塞）。关闭时会返回 http.ErrServerClosed。
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Group() *gin.RouterGroup {
	return s.group
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler 暴露底层 handler，测试里直接 ServeHTTP。
func (s *Server) Handler() nethttp.Handler {
	return s.srv.Handler
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Registrar 业务模块向 HTTP 路由组注册接口。
type Registrar interface {
	HttpRegister(g *gin.RouterGroup)
}
