package grpc

import (
	"OpenFront/internal/shared/transport"
	"OpenFront/modules/kit/logx"
	"context"
	"fmt"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Dial 建立 grpc 连接，客户端请求自动带上 trace/span。
func Dial(target string, extra ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	// grpc Dial 拨号配置
	opts := []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithChainUnaryInterceptor(UnaryClientTraceInterceptor()),
		gogrpc.WithChainStreamInterceptor(StreamClientTraceInterceptor()),
	}
	// 1.创建 ClientConn（核心对象）
	// 2.根据 target 的 scheme 选 resolver
	// 3.初始化负载均衡器（balancer）
	conn, err := gogrpc.NewClient(target, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("dial %s failed: %w", target, err)
	}
	return conn, nil
}

// NewServer 创建带 trace + access log 拦截器和标准健康检查的 grpc server。
func NewServer(log logx.Logger, extra ...gogrpc.ServerOption) (*gogrpc.Server, *health.Server) {
	opts := []gogrpc.ServerOption{
		gogrpc.ChainUnaryInterceptor(UnaryServerTraceInterceptor(), UnaryServerAccessLogInterceptor(log)),
		gogrpc.ChainStreamInterceptor(StreamServerTraceInterceptor()),
	}
	srv := gogrpc.NewServer(append(opts, extra...)...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// UnaryServerAccessLogInterceptor 每个 unary 调用写一条访问日志，业务码取自 grpc status。
func UnaryServerAccessLogInterceptor(log logx.Logger) gogrpc.UnaryServerInterceptor {
	log = logx.OrNop(log)
	return func(
		ctx context.Context,
		req any,
		info *gogrpc.UnaryServerInfo,
		handler gogrpc.UnaryHandler,
	) (any, error) {
		ctx = transport.NewContextWithParent(ctx, "GRPC "+info.FullMethod)
		resp, err := handler(ctx, req)
		if al := transport.FromContext(ctx); al != nil && al.BizCode == transport.BizCode(transport.SystemError) {
			transport.SetFromError(ctx, err, transport.BizCode(BizCodeFromStatus(err)))
		}
		transport.WriteAccessLog(ctx, log)
		return resp, err
	}
}

// BizCodeFromStatus 把 grpc status 折算成业务码段。
func BizCodeFromStatus(err error) int {
	if err == nil {
		return transport.OK
	}
	switch status.Code(err) {
	case codes.InvalidArgument:
		return transport.InvalidParam
	case codes.Unauthenticated, codes.PermissionDenied:
		return transport.Unauthorized
	case codes.NotFound:
		return transport.NotFound
	case codes.ResourceExhausted:
		return transport.RateLimited
	case codes.Unavailable:
		return transport.Unavailable
	case codes.DeadlineExceeded:
		return transport.Timeout
	default:
		return transport.SystemError
	}
}
