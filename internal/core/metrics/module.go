package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/dep2p/go-dapp/config"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Output Metrics 模块输出
//
// 指标关闭时 Collector 与 Handler 均为 nil。
type Output struct {
	fx.Out

	Collector *Collector
	Handler   http.Handler `name:"metrics_handler"`
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(Provide),
)

// Provide 按配置创建 Collector 及其注册表的 HTTP 处理器
func Provide(p Params) (Output, error) {
	cfg := config.DefaultMetricsConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Metrics
	}
	if !cfg.Enable {
		return Output{}, nil
	}

	c := NewCollector(cfg.Namespace)
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return Output{}, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return Output{}, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return Output{}, err
	}

	return Output{
		Collector: c,
		Handler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, nil
}
