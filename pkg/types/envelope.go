package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================================
//                              CallEnvelope
// ============================================================================

// CallEnvelope 远程调用请求
//
// Params 保留原始 JSON，可为数组（位置参数）或对象（命名参数）。
type CallEnvelope struct {
	// ID 关联标识，原样回显到 ResultEnvelope
	ID json.RawMessage `json:"id,omitempty"`

	// Method 方法名
	Method string `json:"method"`

	// Params 参数（数组或对象）
	Params json.RawMessage `json:"params,omitempty"`
}

// Validate 检查必填字段
func (c *CallEnvelope) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: empty request", ErrProtocol)
	}
	if c.Method == "" {
		return fmt.Errorf("%w: missing method", ErrProtocol)
	}
	if p := bytes.TrimSpace(c.Params); len(p) > 0 && p[0] != '[' && p[0] != '{' && !bytes.Equal(p, []byte("null")) {
		return fmt.Errorf("%w: params must be an array or an object", ErrProtocol)
	}
	return nil
}

// IsNamed 参数是否为命名形式
func (c *CallEnvelope) IsNamed() bool {
	p := bytes.TrimSpace(c.Params)
	return len(p) > 0 && p[0] == '{'
}

// ============================================================================
//                              ResultEnvelope
// ============================================================================

// ResultEnvelope 远程调用响应
//
// Result 与 Error 只有一个有意义：Error 非空时 Result 为 null。
type ResultEnvelope struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result"`
	Error  *RPCError       `json:"error"`
}

// NewResultEnvelope 由调用结果构造响应
func NewResultEnvelope(id json.RawMessage, result any, err error) *ResultEnvelope {
	if err != nil {
		return &ResultEnvelope{ID: id, Error: ToRPCError(err)}
	}
	return &ResultEnvelope{ID: id, Result: result}
}

// Err 返回响应中的错误（无错误时为 nil 接口值）
func (r *ResultEnvelope) Err() error {
	if r == nil || r.Error == nil {
		return nil
	}
	return r.Error
}

// CallResult 一次调用的最终结果
type CallResult struct {
	Result any
	Err    error
}

// ============================================================================
//                              RPCError
// ============================================================================

// RPCError 线上错误格式 {code, message}
type RPCError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *RPCError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Is 按错误码匹配错误分类，使 errors.Is(remoteErr, ErrNotFound) 成立
func (e *RPCError) Is(target error) bool {
	if e.Code == "" {
		return false
	}
	return sentinelForCode(e.Code) == target
}

// UnmarshalJSON 兼容字符串形式的错误
func (e *RPCError) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Code, e.Message = "", s
		return nil
	}

	type wire RPCError
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = RPCError(w)
	return nil
}
