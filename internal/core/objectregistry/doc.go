// Package objectregistry 实现对象目录
//
// 对象目录维护 名称 → 位置 的映射以及本地实例缓存。每个条目处于
// 两种状态之一：
//
//	Local          在本进程内分派，调用直接作用于缓存的实例
//	Remote(ep)     转发到 ep 所在节点
//
// 状态转换：
//
//	创建                     → Local（Get/Start）或 Remote（Register 非空地址）
//	Local  → Remote(ep)      Register(name, ep)，ep 与当前位置不同
//	Remote → Local           Unregister(name, 当前 ep) 或 Register(name, "")
//	Local  → 删除             Stop(name)
//
// 状态切换不会销毁已有实例，只改变分派决定。CallRouter 通过 Target
// 一次性取得分派目标，目录是唯一的路由决策点。
//
// 所有变更由同一把锁串行化；对象方法始终在锁外执行。
package objectregistry
