package app

import "OpenFront/modules/kit/errx"

// Code 对局服务的错误码，接口层据此映射 HTTP 状态码 / gRPC code / ws 业务码。
type Code = errx.Code

const (
	CodeInvalidCommand  Code = "GAME_INVALID_COMMAND"
	CodeUnknownCommand  Code = "GAME_UNKNOWN_COMMAND"
	CodeUnauthorized    Code = "GAME_UNAUTHORIZED"
	CodeGameNotFound    Code = "GAME_NOT_FOUND"
	CodeCorruptSnapshot Code = "GAME_CORRUPT_SNAPSHOT"
	// 系统码复用 kit。
	CodeInternalServer Code = errx.CodeInternal
	CodeUnavailable    Code = errx.CodeUnavailable
	CodeTimeout        Code = errx.CodeTimeout
)

type Error = errx.Error

// NewError 业务类错误（不捕获栈）。
func NewError(code Code, msg string) *Error {
	return errx.NewBiz(code, msg)
}

// Wrap 系统类错误并挂载 cause。
func Wrap(code Code, msg string, cause error) *Error {
	return errx.NewSys(code, msg).WithCause(cause)
}

// 哨兵错误：通过 WithData/WithCause/WithReason 派生，不要直接修改。
var (
	ErrInvalidCommand  = errx.NewBiz(CodeInvalidCommand, "invalid command")
	ErrUnknownCommand  = errx.NewBiz(CodeUnknownCommand, "unknown command type")
	ErrUnauthorized    = errx.NewBiz(CodeUnauthorized, "invalid or missing token")
	ErrGameNotFound    = errx.NewBiz(CodeGameNotFound, "game not found")
	ErrCorruptSnapshot = errx.NewBiz(CodeCorruptSnapshot, "corrupt snapshot")
	ErrInternalServer  = errx.ErrInternal
	ErrUnavailable     = errx.ErrUnavailable
	ErrTimeout         = errx.ErrTimeout
)
