package config

import (
	"errors"
	"time"
)

// TransportConfig 节点间 HTTP 传输配置
//
// 探测、列表与代码获取失败时按指数退避重试：
// 首次等待 RetryDelay，之后每次翻倍，不超过 RetryMaxDelay。
type TransportConfig struct {
	// RequestTimeout 单个 HTTP 请求的超时
	RequestTimeout Duration `json:"request_timeout"`

	// RetryAttempts 最大尝试次数（含首次）
	RetryAttempts int `json:"retry_attempts"`

	// RetryDelay 首次重试前的等待
	RetryDelay Duration `json:"retry_delay"`

	// RetryMaxDelay 重试等待上限
	RetryMaxDelay Duration `json:"retry_max_delay"`

	// MaxIdleConnsPerHost 每个对端保留的空闲连接数
	MaxIdleConnsPerHost int `json:"max_idle_conns_per_host"`
}

// DefaultTransportConfig 返回默认的传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		RequestTimeout:      Duration(10 * time.Second),
		RetryAttempts:       3,
		RetryDelay:          Duration(100 * time.Millisecond),
		RetryMaxDelay:       Duration(time.Second),
		MaxIdleConnsPerHost: 16,
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.RequestTimeout <= 0 {
		return errors.New("transport: request timeout must be positive")
	}
	if c.RetryAttempts < 1 {
		return errors.New("transport: retry attempts must be at least 1")
	}
	if c.RetryAttempts > 1 && c.RetryDelay <= 0 {
		return errors.New("transport: retry delay must be positive")
	}
	if c.RetryMaxDelay < c.RetryDelay {
		return errors.New("transport: retry max delay must be >= retry delay")
	}
	if c.MaxIdleConnsPerHost < 0 {
		return errors.New("transport: max idle conns per host cannot be negative")
	}
	return nil
}
