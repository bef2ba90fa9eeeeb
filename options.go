package dapp

import (
	"fmt"
	"time"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/pkg/catalog"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config  *config.Config
	catalog *catalog.Catalog
	logFile string
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置，后续选项在其基础上修改
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		o.config = config.CloneConfig(cfg)
		return nil
	}
}

// WithCatalog 设置本节点可实例化的对象类型
func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) error {
		o.catalog = cat
		return nil
	}
}

// WithLogFile 把日志输出重定向到文件
func WithLogFile(path string) Option {
	return func(o *options) error {
		o.logFile = path
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              监听与发现
// ════════════════════════════════════════════════════════════════════════════

// WithHost 设置监听与对外宣告的主机名
func WithHost(host string) Option {
	return func(o *options) error {
		if host == "" {
			return fmt.Errorf("host cannot be empty")
		}
		o.config.Node.Host = host
		return nil
	}
}

// WithListenPort 设置固定监听端口
//
// 未设置时在扫描端口段内选择第一个空闲端口。
func WithListenPort(port int) Option {
	return func(o *options) error {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		o.config.Node.Port = port
		return nil
	}
}

// WithPortRange 设置扫描端口段 [start, end]
func WithPortRange(start, end int) Option {
	return func(o *options) error {
		if start <= 0 || end > 65535 || end < start {
			return fmt.Errorf("invalid port range: %d-%d", start, end)
		}
		o.config.Discovery.StartPort = start
		o.config.Discovery.EndPort = end
		return nil
	}
}

// WithKnownPeers 添加端口段之外的已知节点
func WithKnownPeers(urls ...string) Option {
	return func(o *options) error {
		o.config.Discovery.KnownPeers = append(o.config.Discovery.KnownPeers, urls...)
		return nil
	}
}

// WithMonitor 设置周期扫描
//
// interval 为 0 时使用默认间隔。
func WithMonitor(enable bool, interval time.Duration) Option {
	return func(o *options) error {
		if interval < 0 {
			return fmt.Errorf("invalid monitor interval: %s", interval)
		}
		o.config.Discovery.Monitor = enable
		if interval > 0 {
			o.config.Discovery.MonitorInterval = config.Duration(interval)
		}
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              存储与指标
// ════════════════════════════════════════════════════════════════════════════

// WithDataDir 设置代码存储目录
func WithDataDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return fmt.Errorf("data dir cannot be empty")
		}
		o.config.CodeStore.DataDir = dir
		o.config.CodeStore.InMemory = false
		return nil
	}
}

// WithInMemoryCodeStore 代码只保存在内存中
func WithInMemoryCodeStore() Option {
	return func(o *options) error {
		o.config.CodeStore.InMemory = true
		return nil
	}
}

// WithAutoFetch 设置登记远程对象时是否拉取其代码
//
// 只应在同一运维方控制的可信集群内开启。
func WithAutoFetch(enable bool) Option {
	return func(o *options) error {
		o.config.CodeStore.AutoFetch = enable
		return nil
	}
}

// WithMetrics 设置是否暴露 /metrics
func WithMetrics(enable bool) Option {
	return func(o *options) error {
		o.config.Metrics.Enable = enable
		return nil
	}
}

// WithCallTimeout 设置单次调用超时
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("invalid call timeout: %s", d)
		}
		o.config.RPC.CallTimeout = config.Duration(d)
		return nil
	}
}
