package interfaces

import (
	"context"
	"time"

	"github.com/dep2p/go-dapp/pkg/types"
)

// NodeRegistry 对端节点集合与发现/同步循环
type NodeRegistry interface {
	// Self 本节点地址
	Self() types.Endpoint

	// Connect 加入节点（幂等）
	Connect(endpoint types.Endpoint)

	// Disconnect 移除节点，并回退其上的所有对象
	Disconnect(endpoint types.Endpoint)

	// List 已连接节点
	List() []types.Peer

	// Discover 探测候选地址并更新节点集合
	Discover(ctx context.Context) (*types.ScanReport, error)

	// SyncObjects 从每个已连接节点拉取对象列表并更新目录
	SyncObjects(ctx context.Context) error

	// Scan 先 Discover 后 SyncObjects
	Scan(ctx context.Context) (*types.ScanReport, error)

	// StartMonitoring 按间隔周期性执行 Scan
	StartMonitoring(interval time.Duration)

	// StopMonitoring 停止周期扫描
	StopMonitoring()
}
