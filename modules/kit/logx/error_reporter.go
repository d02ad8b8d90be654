package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorLog 是从错误链里提取出的可读信息。
type ErrorLog struct {
	Error      string
	Code       string
	Msg        string
	Reason     string
	Data       map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

// BuildErrorLog 提取 code/msg/reason/data/cause 链/发生处栈。
// 只依赖方法集，不依赖 errx 具体类型。
func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}
	out := ErrorLog{Error: err.Error()}

	var cp interface{ CodeText() string }
	if errors.As(err, &cp) {
		out.Code = cp.CodeText()
	}
	var mp interface{ Msg() string }
	if errors.As(err, &mp) {
		out.Msg = mp.Msg()
	}
	var dp interface{ Data() map[string]any }
	if errors.As(err, &dp) {
		out.Data = dp.Data()
	}
	var rp interface{ Reason() string }
	if errors.As(err, &rp) {
		out.Reason = rp.Reason()
	}
	var sp interface{ Stack() []uintptr }
	if errors.As(err, &sp) {
		out.Origin, out.Stack = formatStack(sp.Stack(), 32)
	}
	out.CauseChain = causeChain(err, 20)
	return out
}

func causeChain(err error, maxDepth int) []string {
	var out []string
	for cur, i := errors.Unwrap(err), 0; cur != nil && i < maxDepth; cur, i = errors.Unwrap(cur), i+1 {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
	}
	return out
}

func formatStack(pcs []uintptr, maxFrames int) (origin string, stack string) {
	if len(pcs) == 0 || maxFrames <= 0 {
		return "", ""
	}
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, maxFrames)
	for i := 0; i < maxFrames; i++ {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" && f.Line == 0 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	if len(lines) == 0 {
		return "", ""
	}
	return lines[0], strings.Join(lines, "\n")
}
