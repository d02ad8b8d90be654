package transport

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 对外业务码。0 成功；4xx 段为调用方问题；5xx 段为服务端问题。
const (
	OK           = 0
	InvalidParam = 400
	Unauthorized = 401
	NotFound     = 404
	Conflict     = 409
	RateLimited  = 429
	SystemError  = 500
	Unavailable  = 503
	Timeout      = 504
)
