// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Discovery.StartPort = 4000
//	cfg.Discovery.EndPort = 4010
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

// Config 是 dapp 节点的完整配置结构
//
// 配置按照功能模块组织：
//   - Node: 本节点监听地址与身份描述
//   - Discovery: 端口段扫描、已知节点与周期监控
//   - RPC: 调用超时
//   - Transport: 节点间 HTTP 客户端与重试
//   - CodeStore: 对象代码存储
//   - Metrics: Prometheus 指标
type Config struct {
	// Node 本节点配置
	Node NodeConfig `json:"node"`

	// Discovery 节点发现配置
	Discovery DiscoveryConfig `json:"discovery"`

	// RPC 调用配置
	RPC RPCConfig `json:"rpc"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// CodeStore 代码存储配置
	CodeStore CodeStoreConfig `json:"code_store"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
//
// 默认配置在 localhost:3000-3010 内选择端口，每 5 秒扫描一次。
func NewConfig() *Config {
	return &Config{
		Node:      DefaultNodeConfig(),
		Discovery: DefaultDiscoveryConfig(),
		RPC:       DefaultRPCConfig(),
		Transport: DefaultTransportConfig(),
		CodeStore: DefaultCodeStoreConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置，返回第一个发现的错误。
func (c *Config) Validate() error {
	if err := c.Node.Validate(); err != nil {
		return err
	}
	if err := c.Discovery.Validate(); err != nil {
		return err
	}
	if err := c.RPC.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.CodeStore.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return nil
}
