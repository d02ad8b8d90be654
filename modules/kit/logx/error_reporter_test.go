package logx

import (
	"errors"
	"testing"

	"OpenFront/modules/kit/errx"
)

func TestBuildErrorLog_提取语义与栈(t *testing.T) {
	cause := errors.New("sqlite locked")
	e := errx.NewSys("SNAPSHOT_STORE_DOWN", "snapshot store unavailable").
		WithData("game_id", "g-1").
		WithCause(cause)

	meta := BuildErrorLog(e)
	if meta.Error == "" || meta.Code != "SNAPSHOT_STORE_DOWN" {
		t.Fatalf("期望提取 error/code, got=%+v", meta)
	}
	if meta.Msg != "snapshot store unavailable" {
		t.Fatalf("期望提取 msg, got=%q", meta.Msg)
	}
	if meta.Data["game_id"] != "g-1" {
		t.Fatalf("期望 data 包含 game_id, got=%v", meta.Data)
	}
	if len(meta.CauseChain) != 1 {
		t.Fatalf("期望 cause 链长度 1, got=%v", meta.CauseChain)
	}
	if meta.Origin == "" || meta.Stack == "" {
		t.Fatalf("期望提取发生处栈 origin=%q stack=%q", meta.Origin, meta.Stack)
	}
}

func TestBuildErrorLog_普通错误(t *testing.T) {
	meta := BuildErrorLog(errors.New("boom"))
	if meta.Error != "boom" || meta.Code != "" || meta.Stack != "" {
		t.Fatalf("期望普通错误只有 Error 字段, got=%+v", meta)
	}
	if got := BuildErrorLog(nil); got.Error != "" {
		t.Fatalf("期望 nil 错误返回空结构, got=%+v", got)
	}
}
