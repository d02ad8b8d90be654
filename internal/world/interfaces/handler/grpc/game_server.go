package grpc

import (
	"OpenFront/internal/world/interfaces/handler"
	"OpenFront/internal/world/interfaces/handler/dto"
	"context"
	"encoding/json"
	"strings"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName    = "openfront.Game"
	applyMethod    = "/" + ServiceName + "/Apply"
	snapshotMethod = "/" + ServiceName + "/Snapshot"
)

// GameServer 请求和应答都用 google.protobuf.Struct 承载，字段与 HTTP 接口一致。
type GameServer interface {
	Apply(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Snapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type GameHandler struct {
	game *handler.Game
}

func NewGameHandler(g *handler.Game) *GameHandler {
	return &GameHandler{game: g}
}

// Register 挂到 grpc server 上。
func (h *GameHandler) Register(s gogrpc.ServiceRegistrar) {
	s.RegisterService(&gameServiceDesc, h)
}

// Apply 请求 {game, type, payload}，token 走 metadata authorization。
func (h *GameHandler) Apply(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.CommandReq
	if err := decode(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "参数有误")
	}
	gameID := h.game.GameOrDefault(in.Game)
	actor, err := h.game.Authorize(ctx, authorization(ctx), gameID)
	if err != nil {
		return nil, h.error(ctx, "grpc apply", err)
	}
	state, changed, err := h.game.Command(ctx, gameID, actor, in.Type, in.Payload)
	if err != nil {
		return nil, h.error(ctx, "grpc apply", err)
	}
	return encode(dto.CommandResp{Changed: changed, State: dto.StateView(state)})
}

// Snapshot 请求 {game}。
func (h *GameHandler) Snapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.CommandReq
	if err := decode(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "参数有误")
	}
	state, err := h.game.Runtime.Snapshot(ctx, h.game.GameOrDefault(in.Game))
	if err != nil {
		return nil, h.error(ctx, "grpc snapshot", err)
	}
	return encode(dto.StateView(state))
}

func (h *GameHandler) error(ctx context.Context, action string, err error) error {
	handler.HandleError(ctx, h.game.Log, action, err)
	return handler.ToRPCError(err)
}

func authorization(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get("authorization"); len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func decode(in *structpb.Struct, dst any) error {
	if in == nil {
		return nil
	}
	raw, err := in.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// GameClient 供其它服务和测试调用。
type GameClient struct {
	cc gogrpc.ClientConnInterface
}

func NewGameClient(cc gogrpc.ClientConnInterface) *GameClient {
	return &GameClient{cc: cc}
}

func (c *GameClient) Apply(ctx context.Context, req *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, applyMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameClient) Snapshot(ctx context.Context, req *structpb.Struct, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, snapshotMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

var gameServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "Apply", Handler: applyHandler},
		{MethodName: "Snapshot", Handler: snapshotHandler},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "openfront/game.proto",
}

func applyHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GameServer).Apply(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: applyMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(GameServer).Apply(ctx, req.(*structpb.Struct))
	})
}

func snapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GameServer).Snapshot(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: snapshotMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(GameServer).Snapshot(ctx, req.(*structpb.Struct))
	})
}

var _ GameServer = (*GameHandler)(nil)

// StringField 读取 Struct 里的字符串字段。
func StringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
