package interfaces

import (
	"OpenFront/internal/shared/security"
	"OpenFront/internal/shared/session"
	transporthttp "OpenFront/internal/shared/transport/http"
	"OpenFront/internal/shared/transport/http/middleware"
	"OpenFront/internal/shared/transport/ws"
	"OpenFront/internal/world/interfaces/handler"
	grpchandler "OpenFront/internal/world/interfaces/handler/grpc"
	"OpenFront/internal/world/interfaces/handler/http"
	ws2 "OpenFront/internal/world/interfaces/handler/ws"
	"OpenFront/modules/kit/logx"

	"github.com/gin-gonic/gin"
	gogrpc "google.golang.org/grpc"
)

type Deps struct {
	Runtime     handler.Runtime
	Signer      *security.Signer
	Session     session.Manager
	Limiter     *middleware.IPLimiter
	DefaultGame string
	Log         logx.Logger
}

type Module struct {
	wsHandler   *ws2.WsHandler
	httpHandler *http.HttpHandler
	grpcHandler *grpchandler.GameHandler
}

func New(d Deps) *Module {
	game := handler.NewGame(d.Runtime, d.Signer, d.Session, d.DefaultGame, d.Log)
	return &Module{
		wsHandler:   ws2.NewWsHandler(game, d.Limiter),
		httpHandler: http.NewHttpHandler(game),
		grpcHandler: grpchandler.NewGameHandler(game),
	}
}

func (m *Module) WsRegister(r *ws.Router) {
	m.wsHandler.RegisterRoutes(r)
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

func (m *Module) GrpcRegister(s gogrpc.ServiceRegistrar) {
	m.grpcHandler.Register(s)
}

var _ ws.Registrar = (*Module)(nil)
var _ transporthttp.Registrar = (*Module)(nil)
