package codestore

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

	Transport  interfaces.Transport `optional:"true"`
	Metrics    *metrics.Collector   `optional:"true"`
	UnifiedCfg *config.Config       `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Store     *Store
	CodeStore interfaces.CodeStore
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("codestore",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideServices 打开代码存储
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := config.DefaultCodeStoreConfig()
	if input.UnifiedCfg != nil {
		cfg = input.UnifiedCfg.CodeStore
	}

	store, err := New(cfg, input.Transport, input.Metrics)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Store: store, CodeStore: store}, nil
}

func registerLifecycle(lc fx.Lifecycle, store *Store) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return store.Close()
		},
	})
}
