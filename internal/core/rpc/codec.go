package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dep2p/go-dapp/pkg/types"
)

// ============================================================================
//                              请求信封
// ============================================================================

// NewCall 构造调用信封，id 为新生成的 UUID
func NewCall(method string, args []any) (*types.CallEnvelope, error) {
	if args == nil {
		args = []any{}
	}
	params, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: encode params of %s: %v", types.ErrProtocol, method, err)
	}
	id, _ := json.Marshal(uuid.New().String())
	return &types.CallEnvelope{ID: id, Method: method, Params: params}, nil
}

// EncodeCall 编码调用信封
func EncodeCall(req *types.CallEnvelope) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(req)
}

// DecodeCall 解码并校验调用信封
func DecodeCall(body []byte) (*types.CallEnvelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty request body", types.ErrProtocol)
	}

	var req types.CallEnvelope
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: malformed request: %v", types.ErrProtocol, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// ============================================================================
//                              响应信封
// ============================================================================

// EncodeResult 编码响应信封
//
// 结果无法编码时改为编码一个 invoke 错误，调用方总能拿到合法的响应体。
func EncodeResult(res *types.ResultEnvelope) []byte {
	data, err := json.Marshal(res)
	if err == nil {
		return data
	}

	fallback := types.NewResultEnvelope(res.ID, nil,
		fmt.Errorf("%w: encode result: %v", types.ErrInvoke, err))
	data, _ = json.Marshal(fallback)
	return data
}

// DecodeResult 解码响应信封
func DecodeResult(body []byte) (*types.ResultEnvelope, error) {
	var res types.ResultEnvelope
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: malformed result: %v", types.ErrProtocol, err)
	}
	return &res, nil
}

// ============================================================================
//                              参数约定
// ============================================================================

// Positional 解码位置参数，params 为空或 null 时返回 nil
func Positional(params json.RawMessage) ([]any, error) {
	p := bytes.TrimSpace(params)
	if len(p) == 0 || bytes.Equal(p, []byte("null")) {
		return nil, nil
	}

	var args []any
	if err := json.Unmarshal(p, &args); err != nil {
		return nil, fmt.Errorf("%w: params is not an array: %v", types.ErrProtocol, err)
	}
	return args, nil
}

// Named 解码命名参数
func Named(params json.RawMessage) (map[string]any, error) {
	var named map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(params), &named); err != nil {
		return nil, fmt.Errorf("%w: params is not an object: %v", types.ErrProtocol, err)
	}
	return named, nil
}

// NamedToPositional 按声明的参数名把命名参数转换为位置参数
//
// 缺少的参数为 nil；出现未声明的参数名时返回 ErrProtocol。
func NamedToPositional(names []string, params map[string]any) ([]any, error) {
	declared := make(map[string]struct{}, len(names))
	for _, n := range names {
		declared[n] = struct{}{}
	}
	for k := range params {
		if _, ok := declared[k]; !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", types.ErrProtocol, k)
		}
	}

	args := make([]any, len(names))
	for i, n := range names {
		args[i] = params[n]
	}
	return args, nil
}
