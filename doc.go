// Package dapp 提供分布式对象目录与 RPC 网关
//
// 每个 dapp 节点在本机端口段内监听一个 HTTP 端口，周期性扫描端口段
// 发现其他节点，并同步它们持有的对象。对任意对象名的调用会被路由到
// 持有该对象的节点；无人持有时在本节点按需创建。
//
// # 核心概念
//
//   - Node: 节点，用户交互的主入口
//   - Object: 宿主应用通过 catalog 声明的对象类型及其实例
//   - Location: 对象在本节点（Local）或某个远程节点（Remote）
//
// # 快速开始
//
//	import (
//	    "github.com/dep2p/go-dapp"
//	    "github.com/dep2p/go-dapp/pkg/catalog"
//	)
//
//	cat := catalog.MustNew(catalog.Type{
//	    Name:    "calculator",
//	    New:     func() any { return &Calculator{} },
//	    Methods: map[string][]string{"add": {"a", "b"}},
//	})
//
//	node, err := dapp.Start(ctx, dapp.WithCatalog(cat))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	sum, err := node.Invoke(ctx, "calculator", "add", 1, 2)
//
// # HTTP 接口
//
// 节点对外提供身份探测（GET /）、节点管理（/nodes）、对象管理（/objects）
// 以及调用入口（POST /rpc/{name}）。调用入口总是以 200 返回
// {"id", "result", "error"} 形式的响应信封。
package dapp
