package config

import (
	"errors"
	"time"
)

// RPCConfig 调用配置
type RPCConfig struct {
	// CallTimeout 单次调用（本地或远程）的超时上限
	// 调用方 ctx 已带更短的截止时间时以 ctx 为准
	CallTimeout Duration `json:"call_timeout"`
}

// DefaultRPCConfig 返回默认的调用配置
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		CallTimeout: Duration(30 * time.Second),
	}
}

// Validate 验证调用配置
func (c RPCConfig) Validate() error {
	if c.CallTimeout <= 0 {
		return errors.New("rpc: call timeout must be positive")
	}
	return nil
}
