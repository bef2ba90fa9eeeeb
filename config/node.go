package config

import "fmt"

// NodeConfig 本节点配置
type NodeConfig struct {
	// Host 监听与对外宣告的主机名
	// 默认值: "localhost"
	Host string `json:"host"`

	// Port 固定监听端口
	// 为 0 时在 Discovery 端口段内选择第一个空闲端口
	Port int `json:"port,omitempty"`

	// Description 身份探测响应中的描述
	Description string `json:"description,omitempty"`

	// Documentation 身份探测响应中的文档地址
	Documentation string `json:"documentation,omitempty"`
}

// DefaultNodeConfig 返回默认的节点配置
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Host:          "localhost",
		Description:   "Distributed object directory and RPC gateway",
		Documentation: "/objects",
	}
}

// Validate 验证节点配置
func (c NodeConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("node: host cannot be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("node: invalid port %d", c.Port)
	}
	return nil
}
