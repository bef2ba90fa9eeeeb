package app

import (
	"context"

	"github.com/dep2p/go-dapp/internal/api"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

// Runtime 表示一个已通过 fx 组装完成的 dapp 运行时。
//
// 根包 dapp 的 Node 组合 Runtime 对外提供 API。
type Runtime struct {
	Self      types.Endpoint
	Nodes     interfaces.NodeRegistry
	Objects   interfaces.ObjectRegistry
	Router    interfaces.CallRouter
	CodeStore interfaces.CodeStore // 可能为 nil
	Server    *api.Server

	stop func(ctx context.Context) error
}

// Stop 停止运行时（触发 fx 生命周期 OnStop）。
func (r *Runtime) Stop(ctx context.Context) error {
	if r.stop == nil {
		return nil
	}
	return r.stop(ctx)
}
