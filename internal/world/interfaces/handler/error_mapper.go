package handler

import (
	"OpenFront/internal/shared/transport"
	"OpenFront/internal/world/app"
	"OpenFront/modules/kit/errx"
	"OpenFront/modules/kit/logx"
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const busyMessage = "系统繁忙，请稍后重试"

// ClientCode 按 errx code 映射对外业务码。
func ClientCode(err error) int {
	if err == nil {
		return transport.OK
	}
	switch errx.CodeOf(err) {
	case app.CodeInvalidCommand, app.CodeUnknownCommand, errx.CodeReqParamError:
		return transport.InvalidParam
	case app.CodeUnauthorized:
		return transport.Unauthorized
	case app.CodeGameNotFound:
		return transport.NotFound
	case errx.CodeRateLimited:
		return transport.RateLimited
	case app.CodeTimeout:
		return transport.Timeout
	case app.CodeUnavailable:
		return transport.Unavailable
	default:
		return transport.SystemError
	}
}

// HandleError 接口层统一出口：记录一次日志，写 access 上下文，返回业务码和对外文案。
func HandleError(ctx context.Context, log logx.Logger, action string, err error) (int, string) {
	code := ClientCode(err)
	reason := app.GetErrorReasonCode(err)
	if reason != "" {
		transport.SetErrorReason(ctx, reason)
	} else if err != nil {
		transport.SetErrorReason(ctx, string(errx.CodeOf(err)))
	}
	transport.SetBizCode(ctx, transport.BizCode(code))

	if app.IsBizRejectedError(err) {
		logx.ReportBizWithLoggerContext(ctx, log, logx.NewBizLog(action, reason, app.GetErrorMessage(err)))
		return code, app.GetErrorMessage(err)
	}
	logx.ReportSysErrorWithLoggerContext(ctx, log, logx.NewSysLog(action, err))
	return code, busyMessage
}

// ToRPCError 把错误转换成 grpc status。
func ToRPCError(err error) error {
	if err == nil {
		return nil
	}
	msg := app.GetErrorMessage(err)
	switch ClientCode(err) {
	case transport.InvalidParam:
		return status.Error(codes.InvalidArgument, msg)
	case transport.Unauthorized:
		return status.Error(codes.Unauthenticated, msg)
	case transport.NotFound:
		return status.Error(codes.NotFound, msg)
	case transport.RateLimited:
		return status.Error(codes.ResourceExhausted, msg)
	case transport.Timeout:
		return status.Error(codes.DeadlineExceeded, msg)
	case transport.Unavailable:
		return status.Error(codes.Unavailable, msg)
	default:
		return status.Error(codes.Internal, busyMessage)
	}
}
