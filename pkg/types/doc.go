// Package types 定义 dapp 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 dapp 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据，
// 其中一部分同时也是 HTTP/JSON 线上格式。
//
// # 文件组织
//
//   - endpoint.go  - Endpoint 节点地址、Peer 节点记录、Identity 身份探测响应
//   - object.go    - Location、ObjectEntry、ObjectInfo 对象目录类型
//   - envelope.go  - CallEnvelope、ResultEnvelope、RPCError 调用信封
//   - scan.go      - ScanReport 扫描报告
//   - errors.go    - 错误分类（NotFound/RemoteCall/Protocol/Lifecycle/CodeUnavailable）
package types
