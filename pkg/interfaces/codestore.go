package interfaces

import (
	"context"

	"github.com/dep2p/go-dapp/pkg/types"
)

// CodeStore 对象代码存储
//
// 代码以不透明的字节内容按对象类型保存。跨节点传输是一种显式能力，
// 仅应在同一运维方控制的可信集群内开启。
type CodeStore interface {
	// Fetch 若本地不存在该类型的代码，则从 endpoint 获取并保存
	//
	// 尽力而为：失败只记录日志，不返回给调用方。
	Fetch(ctx context.Context, name string, endpoint types.Endpoint)

	// Has 本地是否存在代码
	Has(name string) bool

	// Read 读取代码，不存在时返回 types.ErrCodeUnavailable
	Read(name string) ([]byte, error)

	// Save 保存代码
	Save(name string, data []byte) error
}
