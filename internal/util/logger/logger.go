// Package logger 提供 dapp 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按子系统配置日志级别
//   - 环境变量配置（DAPP_LOG_LEVEL, DAPP_LOG_FORMAT, DAPP_LOG_ADD_SOURCE）
//   - 运行时调整级别（命令行 --log-level 使用同一语法）
//
// 使用示例:
//
//	package noderegistry
//
//	import "github.com/dep2p/go-dapp/internal/util/logger"
//
//	var log = logger.Logger("noderegistry")
//
//	func foo() {
//	    log.Info("peer connected", "endpoint", ep)
//	    log.Debug("probe failed", "endpoint", ep, "err", err)
//	}
//
// 环境变量配置:
//
//	# 所有子系统 info，noderegistry 为 debug
//	DAPP_LOG_LEVEL=noderegistry=debug,info
//
//	# 使用 JSON 格式输出
//	DAPP_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// levels 各子系统共享的级别变量，派生出的 Logger 同样受其控制
	levels sync.Map // map[string]*slog.LevelVar
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回同一个 Logger。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	lv := levelVar(subsystem, cfg.LevelForSubsystem(subsystem))
	l := slog.New(newHandler(subsystem, lv, cfg))

	actual, _ := loggers.LoadOrStore(subsystem, l)
	return actual.(*slog.Logger)
}

// GlobalLogger 返回不属于特定子系统时使用的 Logger
func GlobalLogger() *slog.Logger {
	return Logger("dapp")
}

func levelVar(subsystem string, initial slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(initial)
	actual, _ := levels.LoadOrStore(subsystem, lv)
	return actual.(*slog.LevelVar)
}

// SetLevel 动态设置子系统的日志级别
//
//	logger.SetLevel("noderegistry", slog.LevelDebug)
func SetLevel(subsystem string, level slog.Level) {
	levelVar(subsystem, level).Set(level)
}

// SetGlobalLevel 设置所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	levels.Range(func(_, value any) bool {
		value.(*slog.LevelVar).Set(level)
		return true
	})
}

// ApplyLevelSpec 按 "子系统=级别,...,默认级别" 语法调整级别
//
// 默认级别作用于所有已创建以及之后创建的子系统，子系统级别优先。
func ApplyLevelSpec(spec string) {
	cfg := ConfigFromEnv()

	configMu.Lock()
	parseLevelConfig(cfg, spec)
	configMu.Unlock()

	levels.Range(func(key, value any) bool {
		value.(*slog.LevelVar).Set(cfg.LevelForSubsystem(key.(string)))
		return true
	})
}

// Discard 返回一个丢弃所有日志的 Logger
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 同样写入新的目标。
//
//	file, _ := os.OpenFile("dapp.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
//	logger.SetOutput(file)
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
