package dto

import (
	"OpenFront/internal/world/codec"
	"OpenFront/internal/world/entity"
)

// Response 三种协议统一的应答外壳，code 为 transport 业务码。
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func Success(data any) Response {
	return Response{Code: 0, Data: data}
}

func Error(code int, msg string) Response {
	return Response{Code: code, Msg: msg}
}

type TokenReq struct {
	Game     string `json:"game"`
	EmpireID string `json:"empire_id" mapstructure:"empire_id"`
}

type TokenResp struct {
	Token  string `json:"token"`
	Game   string `json:"game"`
	Empire string `json:"empire_id"`
}

type CommandReq struct {
	Game    string         `json:"game"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// CommandResp Changed=false 表示命令被规则拒绝，State 为原状态。
type CommandResp struct {
	Changed bool          `json:"changed"`
	State   *codec.Record `json:"state,omitempty"`
}

type EnterReq struct {
	Token string `json:"token"`
	Game  string `json:"game"`
}

type EnterResp struct {
	Game   string        `json:"game"`
	Empire string        `json:"empire_id"`
	State  *codec.Record `json:"state"`
}

type GameCreatedResp struct {
	Game string `json:"game"`
}

// StateView 渲染层看到的快照，即存档记录格式。
func StateView(s *entity.GameState) *codec.Record {
	if s == nil {
		return nil
	}
	rec := codec.ToRecord(s)
	return &rec
}
