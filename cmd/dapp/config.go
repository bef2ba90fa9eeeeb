package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dep2p/go-dapp/config"
)

// ============================================================================
//                              环境变量覆盖（CLI 专用）
// ============================================================================

// envPrefix 环境变量前缀
const envPrefix = "DAPP_"

// 支持的环境变量名（不含前缀）
const (
	envHost            = "HOST"
	envPort            = "PORT"
	envStartPort       = "START_PORT"
	envEndPort         = "END_PORT"
	envKnownPeers      = "KNOWN_PEERS"
	envMonitor         = "MONITOR"
	envMonitorInterval = "MONITOR_INTERVAL"
	envDataDir         = "DATA_DIR"
	envAutoFetch       = "AUTO_FETCH"
	envEnableMetrics   = "ENABLE_METRICS"
	envLogFile         = "LOG_FILE"
)

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 无法解析的值被忽略。
func applyEnvOverrides(cfg *config.Config, getenv func(string) string) {
	get := func(name string) string {
		return strings.TrimSpace(getenv(envPrefix + name))
	}

	if v := get(envHost); v != "" {
		cfg.Node.Host = v
	}
	if port, ok := parseInt(get(envPort)); ok {
		cfg.Node.Port = port
	}
	if port, ok := parseInt(get(envStartPort)); ok {
		cfg.Discovery.StartPort = port
	}
	if port, ok := parseInt(get(envEndPort)); ok {
		cfg.Discovery.EndPort = port
	}
	if v := get(envKnownPeers); v != "" {
		cfg.Discovery.KnownPeers = splitAndTrim(v, ",")
	}
	if v := get(envMonitor); v != "" {
		cfg.Discovery.Monitor = parseBool(v)
	}
	if v := get(envMonitorInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Discovery.MonitorInterval = config.Duration(d)
		}
	}
	if v := get(envDataDir); v != "" {
		cfg.CodeStore.DataDir = v
	}
	if v := get(envAutoFetch); v != "" {
		cfg.CodeStore.AutoFetch = parseBool(v)
	}
	if v := get(envEnableMetrics); v != "" {
		cfg.Metrics.Enable = parseBool(v)
	}
}

// getLogFileFromEnv 从环境变量获取日志文件路径
func getLogFileFromEnv() string {
	return os.Getenv(envPrefix + envLogFile)
}

// ============================================================================
//                              辅助函数
// ============================================================================

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// splitAndTrim 分割字符串并去除空白
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
