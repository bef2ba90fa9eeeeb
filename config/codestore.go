package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// CodeStoreConfig 对象代码存储配置
//
// 代码以不透明字节内容保存在 BadgerDB 中。AutoFetch 开启时，
// 对象被登记到远程节点后会从该节点拉取代码；只应在同一运维方
// 控制的可信集群内开启。
//
// 数据目录结构：
//
//	${DataDir}/
//	└── codestore.db/       # BadgerDB 数据库
type CodeStoreConfig struct {
	// AutoFetch 登记远程对象时是否自动拉取代码
	AutoFetch bool `json:"auto_fetch"`

	// InMemory 使用内存数据库（不落盘）
	InMemory bool `json:"in_memory,omitempty"`

	// DataDir 数据目录路径
	// 默认值: "./data"
	DataDir string `json:"data_dir"`

	// CacheSize 读缓存条目数
	CacheSize int `json:"cache_size"`

	// FetchRate 每秒允许的代码拉取次数
	FetchRate float64 `json:"fetch_rate"`

	// FetchBurst 代码拉取突发上限
	FetchBurst int `json:"fetch_burst"`
}

// DefaultCodeStoreConfig 返回默认的代码存储配置
func DefaultCodeStoreConfig() CodeStoreConfig {
	return CodeStoreConfig{
		AutoFetch:  true,
		DataDir:    "./data",
		CacheSize:  128,
		FetchRate:  5,
		FetchBurst: 10,
	}
}

// Validate 验证代码存储配置
func (c CodeStoreConfig) Validate() error {
	if !c.InMemory && c.DataDir == "" {
		return fmt.Errorf("code_store: data_dir cannot be empty")
	}
	if c.CacheSize <= 0 {
		return errors.New("code_store: cache size must be positive")
	}
	if c.FetchRate <= 0 || c.FetchBurst <= 0 {
		return errors.New("code_store: fetch rate and burst must be positive")
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库路径
func (c CodeStoreConfig) DBPath() string {
	return filepath.Join(c.DataDir, "codestore.db")
}
