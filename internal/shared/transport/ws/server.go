package ws

import (
	"OpenFront/modules/kit/logx"
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server 把 HTTP 升级为 WS 连接，并跟踪存活连接以便关停时统一断开。
type Server struct {
	router     *Router
	log        logx.Logger
	needSecret bool
	upgrader   websocket.Upgrader

	mu    sync.Mutex
	conns map[*WsServer]struct{}
	ctx   context.Context
	stop  context.CancelFunc
}

func NewServer(r *Router, needSecret bool, l logx.Logger) *Server {
	ctx, stop := context.WithCancel(context.Background())
	return &Server{
		router:     r,
		log:        logx.OrNop(l),
		needSecret: needSecret,
		upgrader: websocket.Upgrader{
			// 允许所有CORS跨域请求
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns: make(map[*WsServer]struct{}),
		ctx:   ctx,
		stop:  stop,
	}
}

func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	wsConn, err := s.upgrader.Upgrade(resp, req, nil)
	if err != nil {
		s.log.Error("websocket upgrade error", zap.Error(err))
		return
	}

	s.log.Info("websocket upgrade success", zap.String("addr", wsConn.RemoteAddr().String()))

	wsServer := NewWsServer(s.ctx, wsConn, s.needSecret, s.log)
	wsServer.Router(s.router)
	s.track(wsServer)
	// 先下发密钥再开始读写，保证第一帧一定是 handshake
	wsServer.handshake()
	wsServer.Run()
}

func (s *Server) track(c *WsServer) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	go func() {
		<-c.Done()
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
	}()
}

// Count 返回当前存活连接数。
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown 取消所有连接的 ctx 并断开连接。
func (s *Server) Shutdown() {
	s.stop()
	s.mu.Lock()
	conns := make([]*WsServer, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}
