package errx

// 系统类错误码（跨模块统一，便于告警和排障）。
// 业务错误码由各业务包自己定义，不放在 kit 里。
const (
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeTimeout       Code = "TIMEOUT"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeReqParamError Code = "REQ_PARAM_ERROR"
)

var (
	ErrInternal    = NewSys(CodeInternal, "internal error")
	ErrUnavailable = NewSys(CodeUnavailable, "service unavailable")
	ErrTimeout     = NewSys(CodeTimeout, "request timeout")
	ErrRateLimited = NewBiz(CodeRateLimited, "too many requests")
	ErrReqParam    = NewBiz(CodeReqParamError, "invalid request parameter")
)
