// Package app 提供 dapp 应用编排层
//
// app 包负责：
// - fx 模块组装
// - 依赖注入协调
// - 生命周期管理
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/api"
	"github.com/dep2p/go-dapp/internal/util/logger"
	"github.com/dep2p/go-dapp/pkg/catalog"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var log = logger.Logger("app")

// ErrNotBuilt Bootstrap 尚未构建
var ErrNotBuilt = errors.New("app: bootstrap not built")

// Bootstrap 应用引导程序
//
// Bootstrap 负责：
// - 校验配置
// - 组装 fx 模块
// - 管理应用生命周期
type Bootstrap struct {
	config  *config.Config
	catalog *catalog.Catalog
	logFile string
	extra   []fx.Option
	build   BuildOptions

	fxApp *fx.App
	out   *os.File

	self      types.Endpoint
	nodes     interfaces.NodeRegistry
	objects   interfaces.ObjectRegistry
	router    interfaces.CallRouter
	codeStore interfaces.CodeStore
	server    *api.Server
}

// NewBootstrap 创建引导程序
//
// cfg 为 nil 时使用 config.NewConfig()。
func NewBootstrap(cfg *config.Config, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		config: cfg,
		build:  DefaultBuildOptions(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.config == nil {
		b.config = config.NewConfig()
	}
	if b.catalog == nil {
		b.catalog = catalog.MustNew()
	}
	return b
}

// Build 构建 fx 应用（不启动）
//
// 监听端口在构建阶段即被占用，本节点地址因此在 Start 之前已确定。
func (b *Bootstrap) Build() error {
	if b.fxApp != nil {
		return nil
	}

	if err := config.ValidateAll(b.config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 日志配置必须在所有模块初始化之前
	if err := b.setupLogging(); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	app := fx.New(
		fx.Options(b.setupModules()...),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Invoke(
			fx.Annotate(
				func(self types.Endpoint) {
					b.self = self
				},
				fx.ParamTags(`name:"self"`),
			),
		),
		fx.Invoke(
			fx.Annotate(
				func(cs interfaces.CodeStore) {
					b.codeStore = cs
				},
				fx.ParamTags(`optional:"true"`),
			),
		),
		fx.Populate(&b.nodes, &b.objects, &b.router, &b.server),
	)
	if err := app.Err(); err != nil {
		return multierr.Append(fmt.Errorf("build app: %w", err), b.closeLog())
	}

	b.fxApp = app
	return nil
}

// Start 构建（如尚未构建）并启动应用
func (b *Bootstrap) Start(ctx context.Context) error {
	if err := b.Build(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, b.build.StartTimeout)
	defer cancel()

	if err := b.fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("start app: %w", err)
	}

	log.Info("node started", "url", b.self)
	return nil
}

// StartRuntime 启动应用并返回运行时句柄
func (b *Bootstrap) StartRuntime(ctx context.Context) (*Runtime, error) {
	if err := b.Start(ctx); err != nil {
		return nil, err
	}
	return b.Runtime()
}

// Runtime 返回已构建应用的运行时句柄
func (b *Bootstrap) Runtime() (*Runtime, error) {
	if b.fxApp == nil {
		return nil, ErrNotBuilt
	}
	return &Runtime{
		Self:      b.self,
		Nodes:     b.nodes,
		Objects:   b.objects,
		Router:    b.router,
		CodeStore: b.codeStore,
		Server:    b.server,
		stop:      b.Stop,
	}, nil
}

// Stop 停止应用
//
// 各模块的关闭错误与日志文件的关闭错误合并返回。
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, b.build.StopTimeout)
	defer cancel()

	err := b.fxApp.Stop(stopCtx)
	if err != nil {
		err = fmt.Errorf("stop app: %w", err)
	} else {
		log.Info("node stopped", "url", b.self)
	}
	return multierr.Append(err, b.closeLog())
}

// Self 本节点地址，Build 之后有效
func (b *Bootstrap) Self() types.Endpoint {
	return b.self
}

// setupModules 组装所有 fx 模块
func (b *Bootstrap) setupModules() []fx.Option {
	modules := []fx.Option{
		// 配置与对象目录（Tier 0）
		b.setupConfigModule(),

		// 基础层（Tier 1: metrics, transport）
		FoundationModules(),

		// 存储层（Tier 2: codestore）
		StorageModules(),

		// 目录层（Tier 3: objectregistry, rpc）
		DirectoryModules(),

		// 网络层（Tier 4: noderegistry）
		NetworkModules(),

		// 接口层（Tier 5: api）
		APIModules(),
	}
	return append(modules, b.extra...)
}

// setupConfigModule 提供配置以及对象工厂与签名提供者
func (b *Bootstrap) setupConfigModule() fx.Option {
	cat := b.catalog
	return fx.Options(
		fx.Supply(b.config),
		fx.Provide(
			func() interfaces.ObjectFactory { return cat },
			func() interfaces.SignatureProvider { return cat },
		),
	)
}

// setupLogging 配置日志输出
//
// 如果指定了日志文件，将所有日志重定向到文件
func (b *Bootstrap) setupLogging() error {
	if b.logFile == "" {
		return nil
	}

	file, err := os.OpenFile(b.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	logger.SetOutput(file)
	b.out = file

	log.Info("log file opened", "path", b.logFile)
	return nil
}

// closeLog 关闭日志文件并恢复标准错误输出
func (b *Bootstrap) closeLog() error {
	if b.out == nil {
		return nil
	}
	logger.SetOutput(os.Stderr)
	err := b.out.Close()
	b.out = nil
	return err
}
