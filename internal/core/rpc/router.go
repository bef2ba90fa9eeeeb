package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/core/metrics"
	"github.com/dep2p/go-dapp/internal/util/logger"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var log = logger.Logger("rpc")

// 确保 Router 实现接口
var _ interfaces.CallRouter = (*Router)(nil)

// Router 调用路由
type Router struct {
	objects    interfaces.ObjectRegistry
	signatures interfaces.SignatureProvider
	transport  interfaces.Transport
	cfg        config.RPCConfig
	metrics    *metrics.Collector
}

// Option 路由选项
type Option func(*Router)

// WithSignatures 设置签名提供者，命名参数依赖它
func WithSignatures(s interfaces.SignatureProvider) Option {
	return func(r *Router) {
		r.signatures = s
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Router) {
		r.metrics = c
	}
}

// New 创建调用路由
func New(objects interfaces.ObjectRegistry, transport interfaces.Transport, cfg config.RPCConfig, opts ...Option) *Router {
	r := &Router{
		objects:   objects,
		transport: transport,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ============================================================================
//                              调用
// ============================================================================

// Invoke 同步调用 name 上的 method
//
// 目标不存在时按需创建本地对象。远程对象返回的错误以 *types.RPCError 形式给出，
// 可以用 errors.Is 按错误分类匹配。
func (r *Router) Invoke(ctx context.Context, name, method string, args []any) (any, error) {
	if d := r.cfg.CallTimeout.Duration(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	start := time.Now()
	ep, obj, err := r.objects.Target(name)
	if err != nil {
		r.observe(metrics.RouteLocal, err, start)
		return nil, err
	}

	if ep.IsZero() {
		result, err := r.invokeLocal(ctx, name, obj, method, args)
		r.observe(metrics.RouteLocal, err, start)
		return result, err
	}

	result, err := r.invokeRemote(ctx, ep, name, method, args)
	r.observe(metrics.RouteRemote, err, start)
	return result, err
}

// InvokeAsync 异步调用
//
// 返回的通道恰好收到一个结果，随后关闭。
func (r *Router) InvokeAsync(ctx context.Context, name, method string, args []any) <-chan types.CallResult {
	ch := make(chan types.CallResult, 1)
	go func() {
		defer close(ch)
		result, err := r.Invoke(ctx, name, method, args)
		ch <- types.CallResult{Result: result, Err: err}
	}()
	return ch
}

// Go 回调形式的异步调用，onDone 恰好被调用一次
func (r *Router) Go(ctx context.Context, name, method string, args []any, onDone func(result any, err error)) {
	ch := r.InvokeAsync(ctx, name, method, args)
	go func() {
		res := <-ch
		if onDone != nil {
			onDone(res.Result, res.Err)
		}
	}()
}

func (r *Router) invokeLocal(ctx context.Context, name string, obj interfaces.Object, method string, args []any) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("object method panicked",
				"object", name,
				"method", method,
				"panic", rec,
				"stack", string(debug.Stack()))
			result = nil
			err = fmt.Errorf("%w: %s.%s panicked: %v", types.ErrInvoke, name, method, rec)
		}
	}()

	log.Debug("invoking local object", "object", name, "method", method)
	return obj.Invoke(ctx, method, args)
}

func (r *Router) invokeRemote(ctx context.Context, ep types.Endpoint, name, method string, args []any) (any, error) {
	if r.transport == nil {
		return nil, fmt.Errorf("%w: no transport for %s at %s", types.ErrRemoteCall, name, ep)
	}

	req, err := NewCall(method, args)
	if err != nil {
		return nil, err
	}

	log.Debug("forwarding call", "object", name, "method", method, "endpoint", ep)
	res, err := r.transport.Call(ctx, ep, name, req)
	if err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return res.Result, nil
}

func (r *Router) observe(route string, err error, start time.Time) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = types.CodeOf(err)
	}
	r.metrics.ObserveCall(route, outcome, time.Since(start))
}

// ============================================================================
//                              信封处理
// ============================================================================

// HandleCall 处理已解码的调用信封
//
// 总是返回响应信封，错误放在信封内。
func (r *Router) HandleCall(ctx context.Context, name string, req *types.CallEnvelope) (res *types.ResultEnvelope) {
	var id json.RawMessage
	if req != nil {
		id = req.ID
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("call handler panicked", "object", name, "panic", rec)
			res = types.NewResultEnvelope(id, nil, fmt.Errorf("%w: %v", types.ErrInvoke, rec))
		}
	}()

	if err := req.Validate(); err != nil {
		return types.NewResultEnvelope(id, nil, err)
	}

	args, err := r.arguments(name, req)
	if err != nil {
		return types.NewResultEnvelope(id, nil, err)
	}

	result, err := r.Invoke(ctx, name, req.Method, args)
	return types.NewResultEnvelope(id, result, err)
}

// HandleRaw 处理原始请求体
func (r *Router) HandleRaw(ctx context.Context, name string, body []byte) *types.ResultEnvelope {
	req, err := DecodeCall(body)
	if err != nil {
		return types.NewResultEnvelope(peekID(body), nil, err)
	}
	return r.HandleCall(ctx, name, req)
}

// arguments 按参数约定得到位置参数
func (r *Router) arguments(name string, req *types.CallEnvelope) ([]any, error) {
	if !req.IsNamed() {
		return Positional(req.Params)
	}

	named, err := Named(req.Params)
	if err != nil {
		return nil, err
	}
	if r.signatures == nil {
		return nil, fmt.Errorf("%w: named parameters are not supported for %s", types.ErrProtocol, name)
	}
	names, err := r.signatures.SignatureOf(name, req.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrProtocol, err)
	}
	return NamedToPositional(names, named)
}

// peekID 尽力从无法完整解码的请求体中取出 id
func peekID(body []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}
	return probe.ID
}
