package handler

import (
	"OpenFront/internal/shared/security"
	"OpenFront/internal/shared/session"
	"OpenFront/internal/world/app"
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/sim"
	"OpenFront/modules/kit/logx"
	"context"
	"errors"
	"strings"
)

// Runtime 接口层依赖的对局能力，由 world/actor.Runtime 实现。
type Runtime interface {
	Create(ctx context.Context, gameID entity.GameID) (*entity.GameState, error)
	Apply(ctx context.Context, gameID entity.GameID, cmd sim.Command) (*entity.GameState, bool, error)
	Snapshot(ctx context.Context, gameID entity.GameID) (*entity.GameState, error)
	Reset(ctx context.Context, gameID entity.GameID) (*entity.GameState, error)
	Subscribe(gameID entity.GameID, fn func(*entity.GameState)) (unsubscribe func())
}

// Game 三种协议共用的接口层门面：鉴权、命令解析、对局调用。
type Game struct {
	Runtime     Runtime
	Signer      *security.Signer
	Session     session.Manager
	DefaultGame entity.GameID
	Log         logx.Logger
}

func NewGame(rt Runtime, signer *security.Signer, s session.Manager, defaultGame string, log logx.Logger) *Game {
	if defaultGame == "" {
		defaultGame = "default"
	}
	return &Game{
		Runtime:     rt,
		Signer:      signer,
		Session:     s,
		DefaultGame: entity.GameID(defaultGame),
		Log:         logx.OrNop(log),
	}
}

// GameOrDefault 客户端没带对局 id 时落到默认对局。
func (g *Game) GameOrDefault(id string) entity.GameID {
	if id == "" {
		return g.DefaultGame
	}
	return entity.GameID(id)
}

// Authorize 校验 token 并返回行动帝国；token 限定了对局时必须与 gameID 一致。
// 帝国必须仍在对局里且不是 AI，旧 token 也不能拿来操控 AI。
func (g *Game) Authorize(ctx context.Context, token string, gameID entity.GameID) (entity.EmpireID, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", app.ErrUnauthorized
	}
	if g.Signer == nil {
		return "", app.ErrInternalServer.WithData("component", "signer")
	}
	_, claims, err := g.Signer.ParseToken(token)
	if err != nil {
		return "", app.ErrUnauthorized.WithCause(err)
	}
	if claims.Game != "" && entity.GameID(claims.Game) != gameID {
		return "", app.ErrUnauthorized.WithData("game", string(gameID))
	}
	empire := entity.EmpireID(claims.EmpireID)
	if err := g.controllable(ctx, gameID, empire); err != nil {
		if errors.Is(err, app.ErrInvalidCommand) {
			return "", app.ErrUnauthorized.WithCause(err)
		}
		return "", err
	}
	return empire, nil
}

// IssueToken 只给对局里确实存在的人类帝国签发 token。
func (g *Game) IssueToken(ctx context.Context, gameID entity.GameID, empire entity.EmpireID) (string, error) {
	if empire == "" {
		return "", app.ErrInvalidCommand.WithReason(app.ReasonEmpireNotFound)
	}
	if err := g.controllable(ctx, gameID, empire); err != nil {
		return "", err
	}
	if g.Signer == nil {
		return "", app.ErrInternalServer.WithData("component", "signer")
	}
	token, err := g.Signer.Award(string(empire), string(gameID))
	if err != nil {
		return "", app.Wrap(app.CodeInternalServer, "token issue failed", err)
	}
	return token, nil
}

// controllable AI 帝国只由服务端驱动，不接受远程命令。
func (g *Game) controllable(ctx context.Context, gameID entity.GameID, empire entity.EmpireID) error {
	state, err := g.Runtime.Snapshot(ctx, gameID)
	if err != nil {
		return err
	}
	e := state.Empire(empire)
	if e == nil {
		return app.ErrInvalidCommand.WithReason(app.ReasonEmpireNotFound).WithData("empire", string(empire))
	}
	if e.IsAI {
		return app.ErrUnauthorized.WithReason(app.ReasonEmpireIsAI).WithData("empire", string(empire))
	}
	return nil
}

// Command 解析并执行一条命令。
func (g *Game) Command(ctx context.Context, gameID entity.GameID, actor entity.EmpireID, typ string, payload map[string]any) (*entity.GameState, bool, error) {
	cmd, err := sim.ParseCommand(actor, typ, payload)
	if err != nil {
		return nil, false, err
	}
	return g.Runtime.Apply(ctx, gameID, cmd)
}
