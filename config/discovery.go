package config

import (
	"errors"
	"fmt"
	"time"
)

// DiscoveryConfig 节点发现配置
//
// 候选节点为 http://<Node.Host>:<port>（port ∈ [StartPort, EndPort]，不含本节点端口）
// 加上 KnownPeers 中列出的地址。
type DiscoveryConfig struct {
	// StartPort 扫描端口段起点（含）
	StartPort int `json:"start_port"`

	// EndPort 扫描端口段终点（含）
	EndPort int `json:"end_port"`

	// KnownPeers 端口段之外的已知节点地址
	// 例如 "http://10.0.0.5:3000"
	KnownPeers []string `json:"known_peers,omitempty"`

	// ProbeTimeout 单个身份探测的超时（含重试）
	ProbeTimeout Duration `json:"probe_timeout"`

	// SyncTimeout 单个节点对象列表同步的超时（含重试）
	SyncTimeout Duration `json:"sync_timeout"`

	// Monitor 是否随节点启动周期扫描
	Monitor bool `json:"monitor"`

	// MonitorInterval 周期扫描间隔
	MonitorInterval Duration `json:"monitor_interval"`
}

// DefaultDiscoveryConfig 返回默认的发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		StartPort:       3000,
		EndPort:         3010,
		ProbeTimeout:    Duration(2 * time.Second),
		SyncTimeout:     Duration(5 * time.Second),
		Monitor:         true,
		MonitorInterval: Duration(5 * time.Second),
	}
}

// Ports 返回端口段内的端口数
func (c DiscoveryConfig) Ports() int {
	return c.EndPort - c.StartPort + 1
}

// Validate 验证发现配置
func (c DiscoveryConfig) Validate() error {
	if c.StartPort <= 0 || c.EndPort > 65535 {
		return fmt.Errorf("discovery: port range [%d, %d] out of bounds", c.StartPort, c.EndPort)
	}
	if c.EndPort < c.StartPort {
		return fmt.Errorf("discovery: end_port %d < start_port %d", c.EndPort, c.StartPort)
	}
	if c.ProbeTimeout <= 0 {
		return errors.New("discovery: probe timeout must be positive")
	}
	if c.SyncTimeout <= 0 {
		return errors.New("discovery: sync timeout must be positive")
	}
	if c.Monitor && c.MonitorInterval <= 0 {
		return errors.New("discovery: monitor interval must be positive")
	}
	return nil
}
