// Package mocks 提供统一的测试 Mock 实现
//
// # Mock 列表
//
//   - MockTransport: 模拟 interfaces.Transport（探测、对象列表、调用、代码获取）
//   - MockCodeStore: 模拟 interfaces.CodeStore，内存保存代码
//   - MockObject: 模拟 interfaces.Object
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 记录调用历史，便于验证测试行为
// 3. 并发安全: 发现与同步会并发调用 Transport，调用记录由互斥锁保护
//
// # 使用示例
//
//	tr := &mocks.MockTransport{
//	    ProbeFunc: func(ctx context.Context, ep types.Endpoint) (*types.Identity, error) {
//	        return nil, errors.New("connection refused")
//	    },
//	}
//	report, _ := nodes.Discover(ctx)
//	assert.Empty(t, report.Connected)
//	assert.Len(t, tr.ProbeCalls(), 10)
package mocks
