// Package interfaces 定义 dapp 的公共接口
//
// 一个接口文件对应一个实现目录或一个外部协作者：
//
// # 核心组件
//
//   - objectregistry.go - 对象目录（internal/core/objectregistry）
//   - noderegistry.go   - 节点发现与同步（internal/core/noderegistry）
//   - router.go         - 调用路由（internal/core/rpc）
//
// # 外部协作者
//
//   - object.go         - Object、ObjectFactory、SignatureProvider（由宿主应用提供，见 pkg/catalog）
//   - codestore.go      - 对象代码存储（internal/core/codestore）
//   - transport.go      - 节点间传输（internal/core/transport）
package interfaces
