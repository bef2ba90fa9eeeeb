// Package transport 实现节点间 HTTP 传输
//
// Client 负责四种请求：
//
//	GET  <ep>/                        身份探测
//	GET  <ep>/objects?remote=false    对端本地托管的对象
//	POST <ep>/rpc/<name>              调用信封
//	GET  <ep>/objects/<name>/code     对象代码
//
// 探测、列表与代码获取在未收到响应或收到 5xx/429 时按指数退避重试
// （juju/retry）；调用只在拨号失败时重试，对端可能已经执行的调用不会重放。
package transport
