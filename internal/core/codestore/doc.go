// Package codestore 提供对象代码存储
//
// 代码按对象类型（组合名 "kind/id" 中的 kind）以不透明字节保存在
// BadgerDB 中，读路径经过 LRU 缓存。Fetch 从对端节点拉取本地缺失的
// 代码：同一类型的并发拉取合并为一次，整体速率受令牌桶限制。
//
// # 使用示例
//
//	store, err := codestore.New(cfg.CodeStore, transport)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	store.Save("calculator", src)
//	data, err := store.Read("calculator/7") // 与 "calculator" 相同
//
// 跨节点传输代码只应在同一运维方控制的可信集群内启用。
package codestore
