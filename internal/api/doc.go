// Package api 提供节点的 HTTP 接口
//
// 端点：
//   - GET  /                              - 身份探测 {app, url, description, documentation}
//   - GET  /nodes                         - 已连接节点地址列表
//   - POST /nodes/connect                 - 连接节点，请求体 {"url": "..."}
//   - POST /nodes/disconnect              - 断开节点，请求体 {"url": "..."}
//   - GET  /nodes/scan                    - 立即执行一轮扫描，返回 {connected, disconnected, time}
//   - GET  /objects?local=&remote=        - 对象列表
//   - GET  /objects/{name}                - 对象方法签名
//   - GET  /objects/{name}/code           - 读取对象代码
//   - POST /objects/{name}/code           - 保存对象代码
//   - GET  /objects/{name}/start          - 启动对象
//   - GET  /objects/{name}/stop           - 停止对象
//   - POST /rpc/{name}                    - 调用对象方法，请求体为调用信封
//   - GET  /metrics                       - Prometheus 指标（启用时）
//
// 对象名可以是组合形式 kind/id，此时 {name} 占两个路径段。
package api
