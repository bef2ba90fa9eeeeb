package api

import (
	"context"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

// ListenerOutput 监听器输出
//
// 监听器在构造阶段打开，本节点地址因此可以先于其他模块确定。
type ListenerOutput struct {
	fx.Out

	Listener net.Listener
	Self     types.Endpoint `name:"self"`
}

// ModuleInput 依赖输入
type ModuleInput struct {
	fx.In

	Listener   net.Listener
	Self       types.Endpoint `name:"self"`
	Nodes      interfaces.NodeRegistry
	Objects    interfaces.ObjectRegistry
	Router     interfaces.CallRouter
	CodeStore  interfaces.CodeStore `optional:"true"`
	Metrics    http.Handler         `name:"metrics_handler" optional:"true"`
	UnifiedCfg *config.Config       `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(ProvideListener, ProvideServer),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideListener 打开本节点监听器
func ProvideListener(lc fx.Lifecycle, cfg *config.Config) (ListenerOutput, error) {
	ln, self, err := Listen(cfg)
	if err != nil {
		return ListenerOutput{}, err
	}
	// Shutdown 已关闭监听器时再次关闭返回的错误可以忽略
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			_ = ln.Close()
			return nil
		},
	})
	return ListenerOutput{Listener: ln, Self: self}, nil
}

// ProvideServer 创建 HTTP 服务
func ProvideServer(input ModuleInput) *Server {
	node := config.DefaultNodeConfig()
	if input.UnifiedCfg != nil {
		node = input.UnifiedCfg.Node
	}

	return New(Config{
		Self:      input.Self,
		Node:      node,
		Nodes:     input.Nodes,
		Objects:   input.Objects,
		Router:    input.Router,
		CodeStore: input.CodeStore,
		Metrics:   input.Metrics,
	})
}

type lifecycleInput struct {
	fx.In

	LC       fx.Lifecycle
	Server   *Server
	Listener net.Listener
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return input.Server.Start(input.Listener)
		},
		OnStop: func(ctx context.Context) error {
			return input.Server.Stop(ctx)
		},
	})
}
