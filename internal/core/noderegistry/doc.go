// Package noderegistry 维护已连接的对端节点集合
//
// 节点注册表负责三件事：
//
//   - 发现：并发探测候选地址（端口区间内的本机地址以及配置的已知节点），
//     新确认的节点加入集合，确认失败的已知节点移除
//   - 同步：逐个拉取已连接节点本地托管的对象列表，并据此更新对象目录
//   - 监控：按固定间隔循环执行"发现 + 同步"
//
// 断开节点会把位于该节点的所有对象回退为本地，对象本身不会被删除。
//
// # 锁顺序
//
// 注册表自身的锁先于对象目录的锁获取，反向顺序不允许出现。
package noderegistry
