package noderegistry

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/core/metrics"
	"github.com/dep2p/go-dapp/internal/util/logger"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var log = logger.Logger("noderegistry")

// 确保 Registry 实现接口
var _ interfaces.NodeRegistry = (*Registry)(nil)

// Registry 节点注册表
type Registry struct {
	self      types.Endpoint
	host      string
	cfg       config.DiscoveryConfig
	transport interfaces.Transport
	objects   interfaces.ObjectRegistry
	clock     clock.Clock
	metrics   *metrics.Collector

	mu    sync.RWMutex
	peers map[types.Endpoint]*types.Peer

	// scanMu 保证同一时刻只有一轮发现/同步在执行
	scanMu sync.Mutex

	monMu     sync.Mutex
	monCancel context.CancelFunc
	monDone   chan struct{}
}

// Option 注册表选项
type Option func(*Registry)

// WithClock 设置时钟，测试中使用 clock.NewMock()
func WithClock(c clock.Clock) Option {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Registry) {
		r.metrics = c
	}
}

// New 创建节点注册表
//
// self 为本节点地址，host 为端口段候选地址使用的主机名。
func New(self types.Endpoint, host string, cfg config.DiscoveryConfig,
	transport interfaces.Transport, objects interfaces.ObjectRegistry, opts ...Option) *Registry {
	r := &Registry{
		self:      self,
		host:      host,
		cfg:       cfg,
		transport: transport,
		objects:   objects,
		clock:     clock.New(),
		peers:     make(map[types.Endpoint]*types.Peer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Self 本节点地址
func (r *Registry) Self() types.Endpoint {
	return r.self
}

// ============================================================================
//                              节点集合
// ============================================================================

// Connect 加入节点，已存在时不做任何事
func (r *Registry) Connect(ep types.Endpoint) {
	if ep.IsZero() || ep == r.self {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectLocked(ep)
}

// Disconnect 移除节点，并回退位于该节点的所有对象
func (r *Registry) Disconnect(ep types.Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnectLocked(ep)
}

// List 返回已连接节点，按地址排序
func (r *Registry) List() []types.Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Peer, 0, len(r.peers))
	for _, p := range r.peers {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

func (r *Registry) connectLocked(ep types.Endpoint) bool {
	if _, ok := r.peers[ep]; ok {
		return false
	}
	r.peers[ep] = &types.Peer{Endpoint: ep, LastConfirmed: r.clock.Now()}
	r.metrics.SetPeers(len(r.peers))
	log.Info("connected node", "endpoint", ep)
	return true
}

func (r *Registry) disconnectLocked(ep types.Endpoint) bool {
	if _, ok := r.peers[ep]; !ok {
		return false
	}
	delete(r.peers, ep)
	r.metrics.SetPeers(len(r.peers))
	log.Info("disconnected node", "endpoint", ep)

	r.objects.UnregisterAll(ep)
	return true
}

func (r *Registry) endpoints() []types.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Endpoint, 0, len(r.peers))
	for ep := range r.peers {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ============================================================================
//                              发现
// ============================================================================

// Candidates 返回本轮探测的候选地址
//
// 端口段内的地址（不含本节点）、配置的已知节点以及当前已连接的节点，去重后按
// 出现顺序返回。已连接节点即使不在端口段内也会被重新确认。
func (r *Registry) Candidates() []types.Endpoint {
	seen := make(map[types.Endpoint]struct{})
	var out []types.Endpoint
	add := func(ep types.Endpoint) {
		if ep.IsZero() || ep == r.self {
			return
		}
		if _, ok := seen[ep]; ok {
			return
		}
		seen[ep] = struct{}{}
		out = append(out, ep)
	}

	for port := r.cfg.StartPort; port <= r.cfg.EndPort; port++ {
		add(types.EndpointFor(r.host, port))
	}
	for _, raw := range r.cfg.KnownPeers {
		add(types.NormalizeEndpoint(raw))
	}
	for _, ep := range r.endpoints() {
		add(ep)
	}
	return out
}

// Discover 探测全部候选地址并更新节点集合
//
// 所有探测完成后才统一应用结果。ctx 在探测期间被取消时不修改节点集合。
func (r *Registry) Discover(ctx context.Context) (*types.ScanReport, error) {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()
	return r.discover(ctx)
}

func (r *Registry) discover(ctx context.Context) (*types.ScanReport, error) {
	start := r.clock.Now()
	candidates := r.Candidates()
	confirmed := make([]bool, len(candidates))

	if len(candidates) > 0 {
		var g errgroup.Group
		g.SetLimit(len(candidates))
		for i, ep := range candidates {
			g.Go(func() error {
				confirmed[i] = r.probe(ctx, ep)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &types.ScanReport{}
	now := r.clock.Now()

	r.mu.Lock()
	for i, ep := range candidates {
		if confirmed[i] {
			if r.connectLocked(ep) {
				report.Connected = append(report.Connected, ep)
			}
			r.peers[ep].LastConfirmed = now
			continue
		}
		if r.disconnectLocked(ep) {
			report.Disconnected = append(report.Disconnected, ep)
		}
	}
	r.mu.Unlock()

	report.Time = r.clock.Since(start)
	log.Debug("discovery finished",
		"candidates", len(candidates),
		"connected", len(report.Connected),
		"disconnected", len(report.Disconnected),
		"elapsed", report.Time)
	return report, nil
}

// probe 确认 ep 是否为同族节点
func (r *Registry) probe(ctx context.Context, ep types.Endpoint) bool {
	pctx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout.Duration())
	defer cancel()

	_, err := r.transport.Probe(pctx, ep)
	switch {
	case err == nil:
		r.metrics.ObserveProbe(metrics.ProbePeer)
		return true
	case errors.Is(err, types.ErrProtocol):
		r.metrics.ObserveProbe(metrics.ProbeNotPeer)
		log.Debug("endpoint is not a peer", "endpoint", ep, "error", err)
	default:
		r.metrics.ObserveProbe(metrics.ProbeUnreachable)
		log.Debug("endpoint unreachable", "endpoint", ep, "error", err)
	}
	return false
}

// ============================================================================
//                              对象同步
// ============================================================================

// SyncObjects 从每个已连接节点拉取对象列表并更新对象目录
//
// 单个节点失败时回退位于该节点的全部对象，但不断开该节点。
func (r *Registry) SyncObjects(ctx context.Context) error {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()
	return r.syncObjects(ctx)
}

func (r *Registry) syncObjects(ctx context.Context) error {
	peers := r.endpoints()
	if len(peers) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(len(peers))
	for _, ep := range peers {
		g.Go(func() error {
			r.syncPeer(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func (r *Registry) syncPeer(ctx context.Context, ep types.Endpoint) {
	sctx, cancel := context.WithTimeout(ctx, r.cfg.SyncTimeout.Duration())
	defer cancel()

	listing, err := r.transport.ListObjects(sctx, ep)
	if err != nil {
		r.metrics.IncSyncFailure()
		if ctx.Err() != nil {
			return
		}
		log.Warn("failed to retrieve objects of node", "endpoint", ep, "error", err)
		r.objects.UnregisterAll(ep)
		return
	}
	r.applyListing(ep, listing)
}

// applyListing 按 ep 报告的对象列表更新目录
//
// 目录中位于 ep 但不在列表中的对象回退为本地。列表中的对象在目录中不存在，或
// 报告的地址与目录记录的地址不同，则登记到报告的地址（为空时归属 ep）。报告地址
// 指向本节点的条目被忽略。
func (r *Registry) applyListing(ep types.Endpoint, listing []types.ObjectInfo) {
	listed := make(map[string]struct{}, len(listing))
	for _, info := range listing {
		listed[info.Name] = struct{}{}
	}

	for _, e := range r.objects.FindAll(ep) {
		if _, ok := listed[e.Name]; !ok {
			r.objects.Unregister(e.Name, ep)
		}
	}

	for _, info := range listing {
		if info.Name == "" {
			continue
		}
		reported := types.NormalizeEndpoint(string(info.URL))
		if reported == r.self {
			continue
		}

		current, ok := r.objects.Resolve(info.Name)
		if ok && current.Location.Endpoint == reported {
			continue
		}

		owner := reported
		if owner.IsZero() {
			owner = ep
		}
		r.objects.Register(info.Name, owner)
	}
}

// ============================================================================
//                              扫描与监控
// ============================================================================

// Scan 先发现后同步，同一时刻只执行一轮
func (r *Registry) Scan(ctx context.Context) (*types.ScanReport, error) {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()

	start := r.clock.Now()
	report, err := r.discover(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.syncObjects(ctx); err != nil {
		return nil, err
	}

	report.Time = r.clock.Since(start)
	r.metrics.ObserveScan(report.Time)
	return report, nil
}

// StartMonitoring 立即执行一轮扫描，之后每隔 interval 执行一次
//
// 已在监控时不做任何事。
func (r *Registry) StartMonitoring(interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultDiscoveryConfig().MonitorInterval.Duration()
	}

	r.monMu.Lock()
	defer r.monMu.Unlock()
	if r.monCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.monCancel = cancel
	r.monDone = done

	go r.monitor(ctx, interval, done)
	log.Info("started monitoring the network for other nodes", "interval", interval)
}

// StopMonitoring 取消尚未触发的下一轮扫描
//
// 正在执行的扫描不会被中断。
func (r *Registry) StopMonitoring() {
	r.monMu.Lock()
	defer r.monMu.Unlock()
	if r.monCancel == nil {
		return
	}
	r.monCancel()
	r.monCancel = nil
	log.Info("stopped monitoring the network for other nodes")
}

// Close 停止监控并等待正在执行的扫描结束
func (r *Registry) Close() error {
	r.monMu.Lock()
	done := r.monDone
	r.monMu.Unlock()

	r.StopMonitoring()
	if done != nil {
		<-done
	}
	return nil
}

func (r *Registry) monitor(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	for {
		// 扫描不受 ctx 约束：停止监控只取消下一轮
		if _, err := r.Scan(context.Background()); err != nil {
			log.Warn("scanning failed", "error", err)
		}

		timer := r.clock.Timer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
