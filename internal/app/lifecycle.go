package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// App dapp 应用接口
//
// App 提供应用级别的生命周期管理
type App interface {
	// Runtime 返回运行时句柄
	Runtime() *Runtime

	// Wait 阻塞到收到退出信号或 Stop 被调用
	Wait()

	// Stop 停止应用，可重复调用
	Stop() error
}

// internalApp App 的内部实现
type internalApp struct {
	runtime  *Runtime
	stopOnce sync.Once
	stopErr  error
	stopped  chan struct{}
}

// RunApp 运行 dapp 应用
//
// 这是一个便捷函数：
// - 构建并启动节点
// - 等待退出信号
// - 优雅关闭
//
// 示例:
//
//	a, err := app.RunApp(ctx, app.NewBootstrap(cfg, app.WithCatalog(cat)))
//	if err != nil {
//	    return err
//	}
//	a.Wait()
func RunApp(ctx context.Context, bootstrap *Bootstrap) (App, error) {
	rt, err := bootstrap.StartRuntime(ctx)
	if err != nil {
		// 启动失败时已占用的监听器等资源仍需释放
		_ = bootstrap.Stop(context.Background())
		return nil, err
	}

	return &internalApp{
		runtime: rt,
		stopped: make(chan struct{}),
	}, nil
}

// Runtime 返回运行时句柄
func (a *internalApp) Runtime() *Runtime {
	return a.runtime
}

// Wait 阻塞到收到退出信号或 Stop 被调用
func (a *internalApp) Wait() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		log.Info("received signal, shutting down", "signal", sig)
	case <-a.stopped:
		return
	}

	if err := a.Stop(); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	a.stopOnce.Do(func() {
		close(a.stopped)
		if err := a.runtime.Stop(context.Background()); err != nil {
			a.stopErr = fmt.Errorf("stop runtime: %w", err)
		}
	})
	return a.stopErr
}
