package interfaces

import (
	"context"

	"github.com/dep2p/go-dapp/pkg/types"
)

// CallRouter 调用路由：本地直接调用或经传输层转发
type CallRouter interface {
	// Invoke 同步调用
	Invoke(ctx context.Context, name, method string, args []any) (any, error)

	// InvokeAsync 异步调用，通道恰好收到一个结果后关闭
	InvokeAsync(ctx context.Context, name, method string, args []any) <-chan types.CallResult

	// Go 回调形式，onDone 恰好被调用一次
	Go(ctx context.Context, name, method string, args []any, onDone func(result any, err error))

	// HandleCall 处理已解码的调用信封
	HandleCall(ctx context.Context, name string, req *types.CallEnvelope) *types.ResultEnvelope

	// HandleRaw 处理原始请求体，格式错误转换为 ProtocolError 响应
	HandleRaw(ctx context.Context, name string, body []byte) *types.ResultEnvelope
}
