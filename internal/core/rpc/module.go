package rpc

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/core/metrics"
	"github.com/dep2p/go-dapp/pkg/interfaces"
)

// ModuleInput 依赖输入
type ModuleInput struct {
	fx.In

	Objects    interfaces.ObjectRegistry
	Transport  interfaces.Transport         `optional:"true"`
	Signatures interfaces.SignatureProvider `optional:"true"`
	Metrics    *metrics.Collector           `optional:"true"`
	UnifiedCfg *config.Config               `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Router     *Router
	CallRouter interfaces.CallRouter
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("rpc",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供调用路由
func ProvideServices(input ModuleInput) ModuleOutput {
	cfg := config.DefaultRPCConfig()
	if input.UnifiedCfg != nil {
		cfg = input.UnifiedCfg.RPC
	}

	r := New(input.Objects, input.Transport, cfg,
		WithSignatures(input.Signatures),
		WithMetrics(input.Metrics))
	return ModuleOutput{Router: r, CallRouter: r}
}
