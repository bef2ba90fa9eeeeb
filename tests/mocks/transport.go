package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var _ interfaces.Transport = (*MockTransport)(nil)

// MockTransport 模拟 Transport 接口实现
//
// 未设置 XxxFunc 时：Probe 返回连接失败，ListObjects 返回空列表，
// Call 返回连接失败，FetchCode 返回 ErrCodeUnavailable。
type MockTransport struct {
	// 可覆盖的方法
	ProbeFunc       func(ctx context.Context, ep types.Endpoint) (*types.Identity, error)
	ListObjectsFunc func(ctx context.Context, ep types.Endpoint) ([]types.ObjectInfo, error)
	CallFunc        func(ctx context.Context, ep types.Endpoint, name string, req *types.CallEnvelope) (*types.ResultEnvelope, error)
	FetchCodeFunc   func(ctx context.Context, ep types.Endpoint, name string) ([]byte, error)

	mu         sync.Mutex
	probeCalls []types.Endpoint
	listCalls  []types.Endpoint
	callCalls  []CallCall
	fetchCalls []FetchCall
}

// CallCall 记录 Call 调用
type CallCall struct {
	Endpoint types.Endpoint
	Name     string
	Request  *types.CallEnvelope
}

// FetchCall 记录 FetchCode 调用
type FetchCall struct {
	Endpoint types.Endpoint
	Name     string
}

// NewMockTransport 创建 MockTransport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Probe 身份探测
func (m *MockTransport) Probe(ctx context.Context, ep types.Endpoint) (*types.Identity, error) {
	m.mu.Lock()
	m.probeCalls = append(m.probeCalls, ep)
	m.mu.Unlock()

	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, ep)
	}
	return nil, fmt.Errorf("%w: dial %s: connection refused", types.ErrRemoteCall, ep)
}

// ListObjects 获取对象列表
func (m *MockTransport) ListObjects(ctx context.Context, ep types.Endpoint) ([]types.ObjectInfo, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, ep)
	m.mu.Unlock()

	if m.ListObjectsFunc != nil {
		return m.ListObjectsFunc(ctx, ep)
	}
	return nil, nil
}

// Call 发送调用
func (m *MockTransport) Call(ctx context.Context, ep types.Endpoint, name string, req *types.CallEnvelope) (*types.ResultEnvelope, error) {
	m.mu.Lock()
	m.callCalls = append(m.callCalls, CallCall{Endpoint: ep, Name: name, Request: req})
	m.mu.Unlock()

	if m.CallFunc != nil {
		return m.CallFunc(ctx, ep, name, req)
	}
	return nil, fmt.Errorf("%w: dial %s: connection refused", types.ErrRemoteCall, ep)
}

// FetchCode 获取代码
func (m *MockTransport) FetchCode(ctx context.Context, ep types.Endpoint, name string) ([]byte, error) {
	m.mu.Lock()
	m.fetchCalls = append(m.fetchCalls, FetchCall{Endpoint: ep, Name: name})
	m.mu.Unlock()

	if m.FetchCodeFunc != nil {
		return m.FetchCodeFunc(ctx, ep, name)
	}
	return nil, fmt.Errorf("%w: %s", types.ErrCodeUnavailable, name)
}

// ProbeCalls 返回 Probe 调用记录
func (m *MockTransport) ProbeCalls() []types.Endpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Endpoint(nil), m.probeCalls...)
}

// ListCalls 返回 ListObjects 调用记录
func (m *MockTransport) ListCalls() []types.Endpoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Endpoint(nil), m.listCalls...)
}

// CallCalls 返回 Call 调用记录
func (m *MockTransport) CallCalls() []CallCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CallCall(nil), m.callCalls...)
}

// FetchCalls 返回 FetchCode 调用记录
func (m *MockTransport) FetchCalls() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchCall(nil), m.fetchCalls...)
}

// PeerIdentity 返回 ep 的合法身份，便于构造 ProbeFunc
func PeerIdentity(ep types.Endpoint) *types.Identity {
	return &types.Identity{App: types.AppName, URL: ep}
}
