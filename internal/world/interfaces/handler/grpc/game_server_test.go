package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"OpenFront/internal/shared/security"
	"OpenFront/internal/shared/session"
	transportgrpc "OpenFront/internal/shared/transport/grpc"
	"OpenFront/internal/world/actor"
	"OpenFront/internal/world/infra/persistence/memory"
	"OpenFront/internal/world/interfaces/handler"
	"OpenFront/internal/world/service"
	"OpenFront/modules/kit/logx"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type seqIDs struct{ n int64 }

func (s *seqIDs) NextID() int64 {
	s.n++
	return s.n
}

func newClient(t *testing.T) (*GameClient, *security.Signer) {
	t.Helper()
	rt := actor.NewRuntime(actor.Options{
		Repo:        memory.NewGameRepository(),
		Games:       service.NewGameService(service.GameConfig{Seed: 9}, &seqIDs{}, logx.Nop()),
		TickEvery:   time.Hour,
		FlushEvery:  time.Hour,
		DefaultGame: "default",
	}, 2*time.Second)
	signer, err := security.NewSigner("grpc-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner err=%v", err)
	}
	g := handler.NewGame(rt, signer, session.NewSessMgr(), "default", logx.Nop())

	lis := bufconn.Listen(1 << 20)
	srv, _ := transportgrpc.NewServer(logx.Nop())
	NewGameHandler(g).Register(srv)
	go func() { _ = srv.Serve(lis) }()

	conn, err := transportgrpc.Dial("passthrough:///bufnet",
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("Dial err=%v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		rt.Shutdown(ctx)
	})
	return NewGameClient(conn), signer
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct err=%v", err)
	}
	return s
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestSnapshot_返回对局快照(t *testing.T) {
	c, _ := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := c.Snapshot(ctx, mustStruct(t, map[string]any{"game": "default"}))
	if err != nil {
		t.Fatalf("Snapshot err=%v", err)
	}
	if StringField(out, "gamePhase") != "playing" {
		t.Fatalf("期望新对局处于 playing, got=%v", out.GetFields()["gamePhase"])
	}
	if n := len(out.GetFields()["players"].GetListValue().GetValues()); n != 7 {
		t.Fatalf("期望 7 个帝国, got=%d", n)
	}
}

func TestApply_需要token(t *testing.T) {
	c, _ := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Apply(ctx, mustStruct(t, map[string]any{"type": "PAUSE_GAME"}))
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("期望缺少 token 返回 Unauthenticated, got=%v", err)
	}
}

func TestApply_命令生效(t *testing.T) {
	c, signer := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tk, err := signer.Award("player", "default")
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	out, err := c.Apply(withToken(ctx, tk), mustStruct(t, map[string]any{
		"type":    "SELECT_TILE",
		"payload": map[string]any{"tileId": "2-2"},
	}))
	if err != nil {
		t.Fatalf("Apply err=%v", err)
	}
	if !out.GetFields()["changed"].GetBoolValue() {
		t.Fatalf("期望 changed=true")
	}
	state := out.GetFields()["state"].GetStructValue()
	if StringField(state, "selectedTile") != "2-2" {
		t.Fatalf("期望选中 2-2, got=%v", state.GetFields()["selectedTile"])
	}

	_, err = c.Apply(withToken(ctx, tk), mustStruct(t, map[string]any{"type": "FLY"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("期望未知命令返回 InvalidArgument, got=%v", err)
	}
}

func TestSnapshot_非法对局id(t *testing.T) {
	c, _ := newClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.Snapshot(ctx, mustStruct(t, map[string]any{"game": "bad id"})); status.Code(err) != codes.NotFound {
		t.Fatalf("期望非法对局 id 返回 NotFound, got=%v", err)
	}
}
