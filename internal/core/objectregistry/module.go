package objectregistry

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/core/metrics"
	"github.com/dep2p/go-dapp/pkg/interfaces"
)

// ModuleInput 依赖输入
type ModuleInput struct {
	fx.In

	Factory    interfaces.ObjectFactory
	Signatures interfaces.SignatureProvider `optional:"true"`
	CodeStore  interfaces.CodeStore         `optional:"true"`
	Metrics    *metrics.Collector           `optional:"true"`
	UnifiedCfg *config.Config               `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Registry interfaces.ObjectRegistry
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("objectregistry",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideServices 提供对象目录
func ProvideServices(input ModuleInput) ModuleOutput {
	autoFetch := config.DefaultCodeStoreConfig().AutoFetch
	if input.UnifiedCfg != nil {
		autoFetch = input.UnifiedCfg.CodeStore.AutoFetch
	}

	opts := []Option{WithMetrics(input.Metrics)}
	if input.CodeStore != nil {
		opts = append(opts, WithCodeStore(input.CodeStore, autoFetch))
	}

	return ModuleOutput{
		Registry: New(input.Factory, input.Signatures, opts...),
	}
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In

	LC       fx.Lifecycle
	Registry interfaces.ObjectRegistry
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if closer, ok := input.Registry.(interface{ Close() error }); ok {
				return closer.Close()
			}
			return nil
		},
	})
}
