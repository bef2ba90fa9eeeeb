package transport

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/pkg/interfaces"
)

// ModuleInput 依赖输入
type ModuleInput struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Client    *Client
	Transport interfaces.Transport
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideServices 创建传输客户端
func ProvideServices(input ModuleInput) ModuleOutput {
	cfg := config.DefaultTransportConfig()
	if input.UnifiedCfg != nil {
		cfg = input.UnifiedCfg.Transport
	}

	c := New(cfg)
	return ModuleOutput{Client: c, Transport: c}
}

func registerLifecycle(lc fx.Lifecycle, c *Client) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			c.CloseIdleConnections()
			return nil
		},
	})
}
