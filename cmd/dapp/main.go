// Package main 提供 dapp 命令行入口
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dep2p/go-dapp"
	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/examples/objects"
	"github.com/dep2p/go-dapp/internal/util/logger"
)

var log = logger.Logger("cmd")

// version 由构建时 -ldflags 注入
var version = "dev"

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：运行时覆盖 / 快速测试
//   JSON 配置文件：持久化配置
//
// 优先级：命令行 > 环境变量（DAPP_*）> 配置文件 > 默认值
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	host       = flag.String("host", "", "监听与宣告的主机名（默认 localhost）")
	port       = flag.Int("port", 0, "固定监听端口（0 = 端口段内第一个空闲端口）")
	startPort  = flag.Int("start-port", 0, "扫描端口段起点")
	endPort    = flag.Int("end-port", 0, "扫描端口段终点")
	monitor    = flag.Bool("monitor", true, "周期扫描其他节点")
	interval   = flag.Duration("interval", 0, "周期扫描间隔（如 5s）")
	dataDir    = flag.String("data-dir", "", "代码存储目录")
	inMemory   = flag.Bool("in-memory", false, "代码只保存在内存中")
	noExamples = flag.Bool("no-examples", false, "不注册示例对象类型")

	logFile  = flag.String("log", "", "日志文件路径")
	logLevel = flag.String("log-level", "", "日志级别，如 info 或 noderegistry=debug,info")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Printf("dapp %s\n", version)
		return nil
	}

	if *logLevel != "" {
		logger.ApplyLevelSpec(*logLevel)
	}

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	opts := []dapp.Option{dapp.WithConfig(cfg)}
	if !*noExamples {
		opts = append(opts, dapp.WithCatalog(objects.Catalog()))
	}
	logPath := *logFile
	if logPath == "" {
		logPath = getLogFileFromEnv()
	}
	if logPath != "" {
		opts = append(opts, dapp.WithLogFile(logPath))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	node, err := dapp.Start(ctx, opts...)
	cancel()
	if err != nil {
		return fmt.Errorf("start node: %w", err)
	}
	defer func() {
		if err := node.Close(); err != nil {
			log.Error("close node", "error", err)
		}
	}()

	fmt.Printf("dapp %s listening on %s\n", version, node.URL())
	fmt.Printf("scanning ports %d-%d, press Ctrl+C to exit\n",
		cfg.Discovery.StartPort, cfg.Discovery.EndPort)

	waitForSignal()
	fmt.Println("shutting down...")
	return nil
}

// buildConfig 依次应用配置文件、环境变量与命令行参数
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg, os.Getenv)
	applyFlagOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides 只应用显式设置的命令行参数
func applyFlagOverrides(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Node.Host = *host
		case "port":
			cfg.Node.Port = *port
		case "start-port":
			cfg.Discovery.StartPort = *startPort
		case "end-port":
			cfg.Discovery.EndPort = *endPort
		case "monitor":
			cfg.Discovery.Monitor = *monitor
		case "interval":
			cfg.Discovery.MonitorInterval = config.Duration(*interval)
		case "data-dir":
			cfg.CodeStore.DataDir = *dataDir
		case "in-memory":
			cfg.CodeStore.InMemory = *inMemory
		}
	})
}

// waitForSignal 等待退出信号
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}
