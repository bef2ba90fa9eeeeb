package app

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-dapp/internal/api"
	"github.com/dep2p/go-dapp/internal/core/codestore"
	"github.com/dep2p/go-dapp/internal/core/metrics"
	"github.com/dep2p/go-dapp/internal/core/noderegistry"
	"github.com/dep2p/go-dapp/internal/core/objectregistry"
	"github.com/dep2p/go-dapp/internal/core/rpc"
	"github.com/dep2p/go-dapp/internal/core/transport"
)

// ============================================================================
//                              模块集合
// ============================================================================

// FoundationModules 基础层模块组合 (Tier 1)
//
// 指标与节点间传输，其余模块都可能依赖它们。
func FoundationModules() fx.Option {
	return fx.Options(
		metrics.Module,
		transport.Module(),
	)
}

// StorageModules 存储层模块组合 (Tier 2)
func StorageModules() fx.Option {
	return codestore.Module()
}

// DirectoryModules 目录层模块组合 (Tier 3)
//
// 对象目录与调用路由。
func DirectoryModules() fx.Option {
	return fx.Options(
		objectregistry.Module(),
		rpc.Module(),
	)
}

// NetworkModules 网络层模块组合 (Tier 4)
func NetworkModules() fx.Option {
	return noderegistry.Module()
}

// APIModules 接口层模块组合 (Tier 5)
//
// 监听器在此层提供，本节点地址（name:"self"）也由它确定。
func APIModules() fx.Option {
	return api.Module()
}
