package main

import (
	"OpenFront/internal/shared/infrastructure/db"
	sharedmongo "OpenFront/internal/shared/infrastructure/mongo"
	"OpenFront/internal/shared/infrastructure/sqlite"
	"OpenFront/internal/shared/logs"
	"OpenFront/internal/shared/security"
	"OpenFront/internal/shared/serverconfig"
	"OpenFront/internal/shared/session"
	transportgrpc "OpenFront/internal/shared/transport/grpc"
	transporthttp "OpenFront/internal/shared/transport/http"
	"OpenFront/internal/shared/transport/http/middleware"
	"OpenFront/internal/shared/transport/ws"
	"OpenFront/internal/shared/utils"
	worldactor "OpenFront/internal/world/actor"
	"OpenFront/internal/world/app/port"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/infra/persistence/memory"
	worldmongo "OpenFront/internal/world/infra/persistence/mongodb"
	worldmysql "OpenFront/internal/world/infra/persistence/mysql"
	worldsqlite "OpenFront/internal/world/infra/persistence/sqlite"
	"OpenFront/internal/world/interfaces"
	"OpenFront/internal/world/service"
	"OpenFront/modules/kit/logx"
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfgPath := serverconfig.Load(os.Getenv("CONQUEST_CONFIG"), func(next serverconfig.Config) {
		logs.SetLevel(next.Log.Level)
	})
	if err := logs.Init("conquest", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	defer func() {
		_ = logs.Sync()
	}()
	conf := serverconfig.Conf
	logs.Info("conf", zap.String("path", cfgPath), zap.Any("conf", conf))

	baseLogger := logx.NewZapLogger(logs.Logger())

	repo, closeRepo, err := openRepository(conf)
	if err != nil {
		logs.Fatal("open game repository failed", zap.String("driver", conf.Store.Driver), zap.Error(err))
	}
	defer closeRepo()

	ids, err := utils.DefaultSnowflake()
	if err != nil {
		logs.Fatal("init snowflake failed", zap.Error(err))
	}
	games := service.NewGameService(service.GameConfig{
		Width:     conf.Game.Width,
		Height:    conf.Game.Height,
		Seed:      conf.Game.Seed,
		YieldMode: conf.Game.YieldMode,
		MinSpeed:  conf.Game.MinSpeed,
		MaxSpeed:  conf.Game.MaxSpeed,
	}, ids, logs.Named("game"))

	runtime := worldactor.NewRuntime(worldactor.Options{
		Repo:        repo,
		Games:       games,
		TickEvery:   conf.Game.TickInterval,
		FlushEvery:  conf.Game.FlushInterval,
		IdleTimeout: conf.Game.IdleTimeout,
		DefaultGame: entity.GameID(conf.Game.DefaultGame),
		Log:         logs.Named("actor"),
	}, conf.Game.AskTimeout)

	signer, err := security.NewSigner(os.Getenv("JWT_SECRET"), conf.Security.TokenTTL)
	if err != nil {
		logs.Fatal("init jwt signer failed", zap.Error(err))
	}
	limiter := middleware.NewIPLimiter(conf.RateLimit.RPS, conf.RateLimit.Burst)

	module := interfaces.New(interfaces.Deps{
		Runtime:     runtime,
		Signer:      signer,
		Session:     session.NewSessMgr(),
		Limiter:     limiter,
		DefaultGame: conf.Game.DefaultGame,
		Log:         baseLogger,
	})

	// HTTP
	httpServer := transporthttp.NewHttpServer(hostPort(conf.HTTPServer.Host, conf.HTTPServer.Port), nil, baseLogger, middleware.RateLimit(limiter))
	httpModules := []transporthttp.Registrar{module}
	for _, m := range httpModules {
		m.HttpRegister(httpServer.Group())
	}

	// WS
	wsRouter := ws.NewRouter(baseLogger)
	wsModules := []ws.Registrar{module}
	for _, m := range wsModules {
		m.WsRegister(wsRouter)
	}
	wsServer := ws.NewServer(wsRouter, conf.WSServer.NeedSecret, baseLogger)
	wsHttp := transporthttp.NewHttpServer(hostPort(conf.WSServer.Host, conf.WSServer.Port), nil, baseLogger)
	wsHttp.Engine().GET(conf.WSServer.Path, gin.WrapH(wsServer))

	// gRPC
	grpcAddr := hostPort(conf.GRPCServer.Host, conf.GRPCServer.Port)
	grpcServer, health := transportgrpc.NewServer(baseLogger)
	module.GrpcRegister(grpcServer)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logs.Fatal("listen grpc failed", zap.String("addr", grpcAddr), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 3)
	go func() {
		logs.Info("http server started", zap.String("addr", httpServer.Addr()))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("http server start failed: %w", err)
		}
	}()
	go func() {
		logs.Info("ws server started", zap.String("addr", wsHttp.Addr()), zap.String("path", conf.WSServer.Path))
		if err := wsHttp.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("ws server start failed: %w", err)
		}
	}()
	go func() {
		logs.Info("grpc server started", zap.String("addr", grpcAddr))
		health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc serve failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health.Shutdown()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = wsHttp.Shutdown(shutdownCtx)
	wsServer.Shutdown()

	stopCh := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopCh)
	}()
	select {
	case <-stopCh:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}

	// 最后停对局，保证落盘
	runtime.Shutdown(shutdownCtx)
	logs.Info("服务已退出")
}

func hostPort(host string, port int) string {
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// openRepository 按 store.driver 选择快照存储。
func openRepository(conf serverconfig.Config) (port.GameRepository, func(), error) {
	switch conf.Store.Driver {
	case "memory":
		return memory.NewGameRepository(), func() {}, nil
	case "sqlite":
		conn, err := sqlite.Open(conf.SQLite)
		if err != nil {
			return nil, nil, err
		}
		repo, err := worldsqlite.NewGameRepository(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return repo, func() { _ = conn.Close() }, nil
	case "mongodb":
		client, err := sharedmongo.Open(conf.MongoDB, logs.Logger())
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return worldmongo.NewGameRepository(client.Database(conf.MongoDB.Database)), closeFn, nil
	case "mysql":
		gormDB, err := db.Open(conf.MySQL)
		if err != nil {
			return nil, nil, err
		}
		repo, err := worldmysql.NewGameRepository(gormDB)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repo, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}
