package interfaces

import (
	"context"

	"github.com/dep2p/go-dapp/pkg/types"
)

// Transport 节点间传输
//
// 所有方法都受 ctx 约束；传输失败返回包装 types.ErrRemoteCall 的错误。
type Transport interface {
	// Probe 身份探测（GET /）
	Probe(ctx context.Context, endpoint types.Endpoint) (*types.Identity, error)

	// ListObjects 获取对端本地托管的对象（GET /objects?remote=false）
	ListObjects(ctx context.Context, endpoint types.Endpoint) ([]types.ObjectInfo, error)

	// Call 发送调用信封（POST /rpc/<name>）
	Call(ctx context.Context, endpoint types.Endpoint, name string, req *types.CallEnvelope) (*types.ResultEnvelope, error)

	// FetchCode 获取对象代码（GET /objects/<name>/code）
	FetchCode(ctx context.Context, endpoint types.Endpoint, name string) ([]byte, error)
}
