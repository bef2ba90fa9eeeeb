package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/pkg/catalog"
)

// BootstrapOption Bootstrap 配置选项
type BootstrapOption func(*Bootstrap)

// WithConfig 设置配置
func WithConfig(cfg *config.Config) BootstrapOption {
	return func(b *Bootstrap) {
		b.config = cfg
	}
}

// WithCatalog 设置对象类型目录
//
// 未设置时使用空目录，本节点只能转发调用。
func WithCatalog(cat *catalog.Catalog) BootstrapOption {
	return func(b *Bootstrap) {
		b.catalog = cat
	}
}

// WithLogFile 把日志输出重定向到文件
func WithLogFile(path string) BootstrapOption {
	return func(b *Bootstrap) {
		b.logFile = path
	}
}

// WithFxOptions 追加用户自定义的 fx 选项
func WithFxOptions(opts ...fx.Option) BootstrapOption {
	return func(b *Bootstrap) {
		b.extra = append(b.extra, opts...)
	}
}

// WithBuildOptions 设置构建选项
func WithBuildOptions(o BuildOptions) BootstrapOption {
	return func(b *Bootstrap) {
		b.build = o
	}
}

// BuildOptions 构建选项
type BuildOptions struct {
	// StartTimeout 启动超时
	StartTimeout time.Duration

	// StopTimeout 停止超时
	StopTimeout time.Duration
}

// DefaultBuildOptions 默认构建选项
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		StartTimeout: 30 * time.Second,
		StopTimeout:  30 * time.Second,
	}
}
