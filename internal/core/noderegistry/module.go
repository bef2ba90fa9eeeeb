package noderegistry

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/core/metrics"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

// ModuleInput 依赖输入
type ModuleInput struct {
	fx.In

	Self       types.Endpoint `name:"self"`
	Transport  interfaces.Transport
	Objects    interfaces.ObjectRegistry
	Metrics    *metrics.Collector `optional:"true"`
	UnifiedCfg *config.Config     `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Registry *Registry
	Nodes    interfaces.NodeRegistry
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("noderegistry",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideServices 提供节点注册表
func ProvideServices(input ModuleInput) ModuleOutput {
	cfg := config.NewConfig()
	if input.UnifiedCfg != nil {
		cfg = input.UnifiedCfg
	}

	r := New(input.Self, cfg.Node.Host, cfg.Discovery, input.Transport, input.Objects,
		WithMetrics(input.Metrics))
	return ModuleOutput{Registry: r, Nodes: r}
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Registry   *Registry
	UnifiedCfg *config.Config `optional:"true"`
}

// registerLifecycle 按配置启停周期扫描
func registerLifecycle(input lifecycleInput) {
	cfg := config.DefaultDiscoveryConfig()
	if input.UnifiedCfg != nil {
		cfg = input.UnifiedCfg.Discovery
	}

	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if cfg.Monitor {
				input.Registry.StartMonitoring(cfg.MonitorInterval.Duration())
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return input.Registry.Close()
		},
	})
}
