package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 是各模块依赖的最小日志接口：结构化字段 + ctx 透传 trace/span。
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	WithContext(ctx context.Context) Logger
}

// Nop 返回丢弃一切输出的 Logger，测试和未注入日志的组件使用。
func Nop() Logger {
	return NewZapLogger(nil)
}

// OrNop 在 l 为 nil 时返回 Nop。
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
