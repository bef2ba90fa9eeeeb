// Package metrics 提供 dapp 的 Prometheus 指标
//
// Collector 汇总三类指标：
//   - 发现：探测结果、已连接节点数、扫描耗时、同步失败
//   - 目录：按位置（local/remote）统计的对象条目数
//   - 调用：按路由（local/remote）与结果分类的调用次数和耗时
//
// 所有记录方法对 nil *Collector 安全，关闭指标时组件无需判断。
//
// # 快速开始
//
//	c := metrics.NewCollector("dapp")
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(c)
//
//	c.ObserveProbe(metrics.ProbePeer)
//	c.ObserveCall(metrics.RouteLocal, "ok", 3*time.Millisecond)
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics
