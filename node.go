package dapp

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-dapp/internal/app"
	"github.com/dep2p/go-dapp/internal/util/logger"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var log = logger.Logger("dapp")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopped 已关闭，不可再次启动
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Node dapp 节点
//
// Node 是一个门面（Facade），组合 internal/app 组装出的运行时。
//
// 使用示例：
//
//	node, err := dapp.New(
//	    dapp.WithCatalog(cat),
//	    dapp.WithPortRange(3000, 3010),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	node.Invoke(ctx, "calculator", "add", 1, 2)
type Node struct {
	bootstrap *app.Bootstrap
	runtime   *app.Runtime

	mu    sync.RWMutex
	state NodeState
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建新节点
//
// 创建节点但不启动，需要调用 Start() 启动。
func New(opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	bopts := []app.BootstrapOption{}
	if o.catalog != nil {
		bopts = append(bopts, app.WithCatalog(o.catalog))
	}
	if o.logFile != "" {
		bopts = append(bopts, app.WithLogFile(o.logFile))
	}

	return &Node{
		bootstrap: app.NewBootstrap(o.config, bopts...),
		state:     StateIdle,
	}, nil
}

// Start 快捷启动函数
//
// 等价于 New() + node.Start()。
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := node.Start(ctx); err != nil {
		return nil, err
	}
	return node, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 占用监听端口并启动所有服务
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateRunning:
		return ErrAlreadyStarted
	case StateStopped:
		return ErrNodeClosed
	}

	rt, err := n.bootstrap.StartRuntime(ctx)
	if err != nil {
		// 构建阶段可能已占用端口
		_ = n.bootstrap.Stop(context.Background())
		return err
	}

	n.runtime = rt
	n.state = StateRunning
	return nil
}

// Close 关闭节点，可重复调用
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	prev := n.state
	n.state = StateStopped
	if prev != StateRunning {
		return nil
	}

	if err := n.runtime.Stop(context.Background()); err != nil {
		log.Error("failed to stop node", "url", n.runtime.Self, "error", err)
		return err
	}
	return nil
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// running 返回运行时，节点未运行时返回错误
func (n *Node) running() (*app.Runtime, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	switch n.state {
	case StateIdle:
		return nil, ErrNotStarted
	case StateStopped:
		return nil, ErrNodeClosed
	}
	return n.runtime, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件访问
// ════════════════════════════════════════════════════════════════════════════

// URL 本节点地址，未运行时为空
func (n *Node) URL() types.Endpoint {
	rt, err := n.running()
	if err != nil {
		return ""
	}
	return rt.Self
}

// Objects 对象目录，未运行时为 nil
func (n *Node) Objects() interfaces.ObjectRegistry {
	rt, err := n.running()
	if err != nil {
		return nil
	}
	return rt.Objects
}

// Nodes 节点注册表，未运行时为 nil
func (n *Node) Nodes() interfaces.NodeRegistry {
	rt, err := n.running()
	if err != nil {
		return nil
	}
	return rt.Nodes
}

// Router 调用路由，未运行时为 nil
func (n *Node) Router() interfaces.CallRouter {
	rt, err := n.running()
	if err != nil {
		return nil
	}
	return rt.Router
}

// CodeStore 代码存储，未运行或未启用时为 nil
func (n *Node) CodeStore() interfaces.CodeStore {
	rt, err := n.running()
	if err != nil {
		return nil
	}
	return rt.CodeStore
}

// ════════════════════════════════════════════════════════════════════════════
//                              便捷操作
// ════════════════════════════════════════════════════════════════════════════

// Invoke 调用对象方法，对象可能位于任意节点
func (n *Node) Invoke(ctx context.Context, name, method string, args ...any) (any, error) {
	rt, err := n.running()
	if err != nil {
		return nil, err
	}
	return rt.Router.Invoke(ctx, name, method, args)
}

// InvokeAsync 异步调用，返回的通道恰好收到一个结果
func (n *Node) InvokeAsync(ctx context.Context, name, method string, args ...any) <-chan types.CallResult {
	rt, err := n.running()
	if err != nil {
		ch := make(chan types.CallResult, 1)
		ch <- types.CallResult{Err: err}
		close(ch)
		return ch
	}
	return rt.Router.InvokeAsync(ctx, name, method, args)
}

// Scan 立即执行一轮发现与同步
func (n *Node) Scan(ctx context.Context) (*types.ScanReport, error) {
	rt, err := n.running()
	if err != nil {
		return nil, err
	}
	return rt.Nodes.Scan(ctx)
}

// Connect 手动加入节点
func (n *Node) Connect(url string) error {
	rt, err := n.running()
	if err != nil {
		return err
	}
	ep := types.NormalizeEndpoint(url)
	if ep.IsZero() {
		return fmt.Errorf("invalid url %q", url)
	}
	rt.Nodes.Connect(ep)
	return nil
}

// Disconnect 手动移除节点，其上的对象回退为本地
func (n *Node) Disconnect(url string) error {
	rt, err := n.running()
	if err != nil {
		return err
	}
	ep := types.NormalizeEndpoint(url)
	if ep.IsZero() {
		return fmt.Errorf("invalid url %q", url)
	}
	rt.Nodes.Disconnect(ep)
	return nil
}
