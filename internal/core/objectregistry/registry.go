package objectregistry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dep2p/go-dapp/internal/core/metrics"
	"github.com/dep2p/go-dapp/internal/util/logger"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var log = logger.Logger("objectregistry")

// 确保 Registry 实现接口
var _ interfaces.ObjectRegistry = (*Registry)(nil)

// entry 目录条目
type entry struct {
	location types.Location

	// instance 本地实例，Remote 状态下可能仍然保留
	instance interfaces.Object
}

// Registry 对象目录
type Registry struct {
	factory    interfaces.ObjectFactory
	signatures interfaces.SignatureProvider
	codes      interfaces.CodeStore
	autoFetch  bool
	metrics    *metrics.Collector

	mu      sync.RWMutex
	entries map[string]*entry

	// 后台代码拉取
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option 目录选项
type Option func(*Registry)

// WithCodeStore 设置代码存储；autoFetch 为 true 时登记远程对象会触发代码拉取
func WithCodeStore(cs interfaces.CodeStore, autoFetch bool) Option {
	return func(r *Registry) {
		r.codes = cs
		r.autoFetch = autoFetch
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Registry) {
		r.metrics = c
	}
}

// New 创建对象目录
//
// signatures 可为 nil，此时 ListMethods 返回 ErrNotFound。
func New(factory interfaces.ObjectFactory, signatures interfaces.SignatureProvider, opts ...Option) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		factory:    factory,
		signatures: signatures,
		entries:    make(map[string]*entry),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 纯查找
func (r *Registry) Resolve(name string) (types.ObjectEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return types.ObjectEntry{}, false
	}
	return snapshot(name, e), true
}

// Get 查找，不存在时创建本地条目
func (r *Registry) Get(name string) (types.ObjectEntry, error) {
	return r.Start(name)
}

// Start 显式启动对象
//
// 已存在的条目原样返回（包括 Remote 条目）；不存在时实例化并创建 Local 条目，
// 工厂无法创建实例时不创建条目。
func (r *Registry) Start(name string) (types.ObjectEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[name]; ok {
		return snapshot(name, e), nil
	}

	e, err := r.createLocalLocked(name)
	if err != nil {
		return types.ObjectEntry{}, err
	}
	log.Info("started object", "name", name)
	return snapshot(name, e), nil
}

// Stop 删除本地条目
func (r *Registry) Stop(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: cannot stop object %s: not found", types.ErrLifecycle, name)
	}
	if !e.location.IsLocal() {
		return fmt.Errorf("%w: cannot stop object %s: running at %s", types.ErrLifecycle, name, e.location.Endpoint)
	}

	delete(r.entries, name)
	r.updateMetricsLocked()
	log.Info("stopped object", "name", name)
	return nil
}

// Register 将对象登记到 endpoint
//
// endpoint 为空表示显式本地（重新）启动。登记到当前位置是空操作。
func (r *Registry) Register(name string, endpoint types.Endpoint) {
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[name]
	switch {
	case !exists && endpoint.IsZero():
		if _, err := r.createLocalLocked(name); err != nil {
			log.Warn("register local object failed", "name", name, "err", err)
			return
		}

	case !exists:
		r.entries[name] = &entry{location: types.RemoteLocation(endpoint)}
		r.updateMetricsLocked()

	case e.location.Endpoint == endpoint:
		return

	default:
		e.location = types.Location{Endpoint: endpoint}
		if endpoint.IsZero() {
			r.ensureInstanceLocked(name, e)
		}
		r.updateMetricsLocked()
	}

	log.Info("registered object", "name", name, "location", types.Location{Endpoint: endpoint})

	if !endpoint.IsZero() {
		r.fetchCode(name, endpoint)
	}
}

// Unregister 仅当当前位置为 Remote(endpoint) 时回退为本地
func (r *Registry) Unregister(name string, endpoint types.Endpoint) {
	if endpoint.IsZero() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok || e.location.Endpoint != endpoint {
		return
	}
	r.revertLocked(name, e)
	r.updateMetricsLocked()
}

// UnregisterAll 回退所有位于 endpoint 的对象
func (r *Registry) UnregisterAll(endpoint types.Endpoint) {
	if endpoint.IsZero() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for name, e := range r.entries {
		if e.location.Endpoint == endpoint {
			r.revertLocked(name, e)
			changed = true
		}
	}
	if changed {
		r.updateMetricsLocked()
	}
}

// FindAll 返回所有位于 endpoint 的对象（按名称排序）
func (r *Registry) FindAll(endpoint types.Endpoint) []types.ObjectEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []types.ObjectEntry
	for name, e := range r.entries {
		if e.location.Endpoint == endpoint {
			out = append(out, snapshot(name, e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// List 按本地/远程过滤返回快照（按名称排序）
func (r *Registry) List(includeLocal, includeRemote bool) []types.ObjectInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.ObjectInfo, 0, len(r.entries))
	for name, e := range r.entries {
		local := e.location.IsLocal()
		if (local && includeLocal) || (!local && includeRemote) {
			out = append(out, snapshot(name, e).Info())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListMethods 返回对象类型的方法签名
func (r *Registry) ListMethods(name string) (map[string][]string, error) {
	if r.signatures == nil {
		return nil, fmt.Errorf("%w: no signatures for %s", types.ErrNotFound, name)
	}
	return r.signatures.Methods(name)
}

// Target 原子地取得分派目标
//
// 条目不存在时按 Get 语义创建；Local 条目缺少实例时补建。
// 返回 endpoint 非空表示应转发到远程节点。
func (r *Registry) Target(name string) (types.Endpoint, interfaces.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		var err error
		if e, err = r.createLocalLocked(name); err != nil {
			return "", nil, err
		}
		log.Info("started object", "name", name)
	}

	if !e.location.IsLocal() {
		return e.location.Endpoint, nil, nil
	}

	if e.instance == nil {
		obj, err := r.factory.Create(name)
		if err != nil {
			return "", nil, err
		}
		e.instance = obj
	}
	return "", e.instance, nil
}

// Close 取消尚未完成的代码拉取并等待其退出
func (r *Registry) Close() error {
	// 与 Register 互斥，取消后不再有新的拉取加入 wg
	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}

// createLocalLocked 实例化并插入 Local 条目，调用方持有写锁
func (r *Registry) createLocalLocked(name string) (*entry, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty object name", types.ErrNotFound)
	}
	obj, err := r.factory.Create(name)
	if err != nil {
		return nil, err
	}
	e := &entry{instance: obj}
	r.entries[name] = e
	r.updateMetricsLocked()
	return e, nil
}

// ensureInstanceLocked 为 Local 条目补建实例，失败时留待 Target 重试
func (r *Registry) ensureInstanceLocked(name string, e *entry) {
	if e.instance != nil {
		return
	}
	obj, err := r.factory.Create(name)
	if err != nil {
		log.Warn("instantiate object failed", "name", name, "err", err)
		return
	}
	e.instance = obj
}

func (r *Registry) revertLocked(name string, e *entry) {
	log.Info("unregistered object", "name", name, "endpoint", e.location.Endpoint)
	e.location = types.LocalLocation()
	r.ensureInstanceLocked(name, e)
}

func (r *Registry) updateMetricsLocked() {
	if r.metrics == nil {
		return
	}
	local, remote := 0, 0
	for _, e := range r.entries {
		if e.location.IsLocal() {
			local++
		} else {
			remote++
		}
	}
	r.metrics.SetObjects(local, remote)
}

// fetchCode 在后台请求代码存储拉取对象代码
func (r *Registry) fetchCode(name string, endpoint types.Endpoint) {
	if r.codes == nil || !r.autoFetch {
		return
	}
	if r.ctx.Err() != nil {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.codes.Fetch(r.ctx, name, endpoint)
	}()
}

func snapshot(name string, e *entry) types.ObjectEntry {
	return types.ObjectEntry{
		Name:         name,
		Location:     e.location,
		Instantiated: e.instance != nil,
	}
}
