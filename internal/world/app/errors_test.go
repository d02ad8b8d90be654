package app

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is_按错误码匹配(t *testing.T) {
	err := ErrInvalidCommand.WithReason(ReasonBadTileKey)
	wrapped := fmt.Errorf("wrap: %w", err)
	if !errors.Is(wrapped, ErrInvalidCommand) {
		t.Fatalf("期望 errors.Is(wrapped, ErrInvalidCommand) == true, wrapped=%v", wrapped)
	}
	if errors.Is(wrapped, ErrUnknownCommand) {
		t.Fatalf("期望不同错误码不匹配")
	}
	if GetErrorReasonCode(wrapped) != ReasonBadTileKey.Code {
		t.Fatalf("期望取到 reason=%s, got=%s", ReasonBadTileKey.Code, GetErrorReasonCode(wrapped))
	}
}

func TestIsBizRejectedError(t *testing.T) {
	if !IsBizRejectedError(ErrGameNotFound) {
		t.Fatalf("期望 ErrGameNotFound 为业务拒绝")
	}
	sys := Wrap(CodeUnavailable, "snapshot store down", errors.New("dial tcp"))
	if IsBizRejectedError(sys) {
		t.Fatalf("期望系统错误不是业务拒绝")
	}
	if len(sys.Stack()) == 0 {
		t.Fatalf("期望系统错误带栈")
	}
	if GetErrorMessage(errors.New("plain")) != "plain" || GetErrorMessage(nil) != "" {
		t.Fatalf("期望普通错误返回 Error() 文本")
	}
}
