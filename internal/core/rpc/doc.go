// Package rpc 实现调用路由与调用信封编解码
//
// 每次调用都先向对象目录取得分派目标：本地条目直接调用实例，远程条目把调用信封
// 发送到 <endpoint>/rpc/<name>。对象的方法表从不改写，路由决定只在这一处做出。
//
// 请求信封 {id, method, params} 支持两种参数约定：
//
//   - 位置参数：params 为数组，按顺序传入
//   - 命名参数：params 为对象，按方法声明的参数名转换为位置参数
//
// 响应信封 {id, result, error} 总是回显请求 id。格式错误的请求不会引发 panic，
// 而是得到 code 为 "protocol" 的错误响应。
package rpc
