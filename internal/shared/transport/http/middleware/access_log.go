package middleware

import (
	"OpenFront/internal/shared/transport"
	"OpenFront/modules/kit/logx"
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 快照响应体较大，只截取开头一段用于解析 code。
const maxCapturedBody = 512

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCaptureWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *bodyCaptureWriter) capture(data []byte) {
	if left := maxCapturedBody - w.body.Len(); left > 0 {
		if len(data) > left {
			data = data[:left]
		}
		_, _ = w.body.Write(data)
	}
}

// AccessLog 统一写访问日志。handler 已通过 transport.SetBizCode 写入业务码时以其为准，
// 否则尽量从响应体中的 `code` 字段提取，再退化为按 HTTP 状态码判断。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		action := c.Request.Method + " " + route

		ctx := transport.NewContextWithParent(c.Request.Context(), action)
		c.Request = c.Request.WithContext(ctx)

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = bw

		c.Next()

		al := transport.FromContext(ctx)
		if al != nil && al.BizCode != transport.BizCode(transport.SystemError) {
			transport.WriteAccessLog(ctx, log)
			return
		}
		if bizCode, ok := parseBizCode(bw.body.Bytes()); ok {
			transport.SetBizCode(ctx, transport.BizCode(bizCode))
		} else if c.Writer.Status() >= http.StatusInternalServerError {
			transport.SetBizCode(ctx, transport.BizCode(transport.SystemError))
		} else if c.Writer.Status() >= http.StatusBadRequest {
			transport.SetBizCode(ctx, transport.BizCode(c.Writer.Status()))
		} else {
			transport.SetBizCode(ctx, transport.BizCode(transport.OK))
		}

		transport.WriteAccessLog(ctx, log)
	}
}

func parseBizCode(body []byte) (int, bool) {
	if len(body) == 0 {
		return 0, false
	}

	// 优先按常见响应体格式解析：{"code":123, ...}
	var payload struct {
		Code *int `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, false
	}
	if payload.Code == nil {
		return 0, false
	}
	return *payload.Code, true
}
