package types

import "errors"

// ============================================================================
//                              错误分类
// ============================================================================

var (
	// ErrNotFound 未知的对象或方法
	ErrNotFound = errors.New("not found")

	// ErrRemoteCall 无法到达对端节点
	ErrRemoteCall = errors.New("remote call failed")

	// ErrProtocol 信封格式错误或命名参数无法映射
	ErrProtocol = errors.New("protocol error")

	// ErrLifecycle 对不存在或非本地的对象执行 stop
	ErrLifecycle = errors.New("lifecycle error")

	// ErrCodeUnavailable 对象代码在本地不存在且无法获取
	ErrCodeUnavailable = errors.New("code unavailable")

	// ErrInvoke 本地方法执行失败（包括 panic）
	ErrInvoke = errors.New("invocation failed")
)

// 线上错误码
const (
	CodeNotFound        = "not_found"
	CodeRemoteCall      = "remote_call"
	CodeProtocol        = "protocol"
	CodeLifecycle       = "lifecycle"
	CodeCodeUnavailable = "code_unavailable"
	CodeInvoke          = "invoke"
)

var codeSentinels = []struct {
	code string
	err  error
}{
	{CodeNotFound, ErrNotFound},
	{CodeRemoteCall, ErrRemoteCall},
	{CodeProtocol, ErrProtocol},
	{CodeLifecycle, ErrLifecycle},
	{CodeCodeUnavailable, ErrCodeUnavailable},
	{CodeInvoke, ErrInvoke},
}

// CodeOf 返回错误对应的线上错误码，无法归类时返回 "invoke"
func CodeOf(err error) string {
	for _, cs := range codeSentinels {
		if errors.Is(err, cs.err) {
			return cs.code
		}
	}
	return CodeInvoke
}

func sentinelForCode(code string) error {
	for _, cs := range codeSentinels {
		if cs.code == code {
			return cs.err
		}
	}
	return nil
}

// ToRPCError 将错误转换为线上格式
//
// 已经是 *RPCError（例如对端返回的错误）时原样返回。
func ToRPCError(err error) *RPCError {
	if err == nil {
		return nil
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &RPCError{Code: CodeOf(err), Message: err.Error()}
}
