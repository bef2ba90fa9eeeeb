package interfaces

import "github.com/dep2p/go-dapp/pkg/types"

// ObjectRegistry 对象目录：名称 → 位置，以及本地实例缓存
type ObjectRegistry interface {
	// Resolve 纯查找，无副作用
	Resolve(name string) (types.ObjectEntry, bool)

	// Get 查找，不存在时创建本地条目并实例化
	Get(name string) (types.ObjectEntry, error)

	// Start 显式启动对象；已存在时原样返回
	Start(name string) (types.ObjectEntry, error)

	// Stop 删除本地条目；不存在或非本地时返回 types.ErrLifecycle
	Stop(name string) error

	// Register 将对象登记到 endpoint；endpoint 为空表示显式本地（重新）启动
	Register(name string, endpoint types.Endpoint)

	// Unregister 仅当当前位置为 Remote(endpoint) 时回退为本地
	Unregister(name string, endpoint types.Endpoint)

	// UnregisterAll 回退所有位于 endpoint 的对象
	UnregisterAll(endpoint types.Endpoint)

	// FindAll 返回所有位于 endpoint 的对象
	FindAll(endpoint types.Endpoint) []types.ObjectEntry

	// List 按本地/远程过滤返回快照
	List(includeLocal, includeRemote bool) []types.ObjectInfo

	// ListMethods 返回对象类型的方法签名
	ListMethods(name string) (map[string][]string, error)

	// Target 原子地取得分派目标：本地时返回实例，远程时返回 endpoint
	Target(name string) (types.Endpoint, Object, error)
}
