package logx

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// BizLog 描述一次业务拒绝（命令不合法、令牌无效等），INFO 级别，不带栈。
type BizLog struct {
	Action  string
	Reason  string
	Message string
}

// SysLog 描述一次技术错误（存储不可用、actor 超时等），ERROR 级别。
type SysLog struct {
	Action string
	Err    error
}

func NewBizLog(action, reason, message string) BizLog {
	return BizLog{Action: action, Reason: reason, Message: message}
}

func NewSysLog(action string, err error) SysLog {
	return SysLog{Action: action, Err: err}
}

// ReportAccessWithLoggerContext 写访问日志：
// biz_code == 0 INFO，1~499 WARN，>= 500 ERROR。
func ReportAccessWithLoggerContext(ctx context.Context, l Logger, action string, bizCode int, fields ...zap.Field) {
	if l == nil {
		return
	}
	base := append([]zap.Field{
		zap.String("log_type", "access"),
		zap.String("action", action),
		zap.Int("biz_code", bizCode),
	}, fields...)
	withCtx := l.WithContext(ctx)
	switch {
	case bizCode == 0:
		withCtx.Info("access", base...)
	case bizCode >= 500:
		withCtx.Error("access", base...)
	default:
		withCtx.Warn("access", base...)
	}
}

func ReportBizWithLoggerContext(ctx context.Context, l Logger, biz BizLog, fields ...zap.Field) {
	if l == nil {
		return
	}
	action := biz.Action
	if action == "" {
		action = "biz_reject"
	}
	base := []zap.Field{
		zap.String("err_type", "biz"),
		zap.String("action", action),
	}
	msg := action
	if biz.Reason != "" {
		base = append(base, zap.String("reason", biz.Reason))
		msg += ", reason:" + biz.Reason
	}
	if biz.Message != "" {
		base = append(base, zap.String("biz_message", biz.Message))
		msg += ", msg:" + biz.Message
	}
	l.WithContext(ctx).Info(msg, append(base, fields...)...)
}

func ReportSysErrorWithLoggerContext(ctx context.Context, l Logger, sys SysLog, fields ...zap.Field) {
	if sys.Err == nil || l == nil {
		return
	}
	action := sys.Action
	if action == "" {
		action = "sys_error"
	}

	meta := BuildErrorLog(sys.Err)
	base := []zap.Field{
		zap.String("err_type", "sys"),
		zap.String("action", action),
	}
	if meta.Code != "" {
		base = append(base, zap.String("error_code", meta.Code))
	}
	if len(meta.CauseChain) != 0 {
		base = append(base, zap.Strings("cause_chain", meta.CauseChain))
	}
	if len(meta.Data) != 0 {
		base = append(base, zap.Any("error_data", meta.Data))
	}
	if meta.Origin != "" {
		base = append(base, zap.String("origin_caller", meta.Origin))
	}
	if meta.Stack != "" {
		base = append(base, zap.String("stack_origin", meta.Stack))
	}

	msg := fmt.Sprintf("%s, error:%s", action, meta.Error)
	if meta.Reason != "" {
		msg = fmt.Sprintf("%s, reason:%s, error:%s", action, meta.Reason, meta.Error)
	}
	l.WithContext(ctx).Error(msg, append(base, fields...)...)
}
