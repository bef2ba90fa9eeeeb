package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var _ interfaces.CodeStore = (*MockCodeStore)(nil)

// MockCodeStore 模拟 CodeStore 接口实现，默认在内存中保存代码
type MockCodeStore struct {
	FetchFunc func(ctx context.Context, name string, ep types.Endpoint)

	mu         sync.Mutex
	data       map[string][]byte
	fetchCalls []FetchCall

	// Fetched 每次 Fetch 调用后收到一个信号（可为 nil）
	Fetched chan FetchCall
}

// NewMockCodeStore 创建 MockCodeStore
func NewMockCodeStore() *MockCodeStore {
	return &MockCodeStore{
		data:    make(map[string][]byte),
		Fetched: make(chan FetchCall, 16),
	}
}

// Fetch 记录调用
func (m *MockCodeStore) Fetch(ctx context.Context, name string, ep types.Endpoint) {
	call := FetchCall{Endpoint: ep, Name: name}
	m.mu.Lock()
	m.fetchCalls = append(m.fetchCalls, call)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		m.FetchFunc(ctx, name, ep)
	}
	if m.Fetched != nil {
		select {
		case m.Fetched <- call:
		default:
		}
	}
}

// Has 是否存在
func (m *MockCodeStore) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[types.Kind(name)]
	return ok
}

// Read 读取
func (m *MockCodeStore) Read(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[types.Kind(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrCodeUnavailable, name)
	}
	return data, nil
}

// Save 保存
func (m *MockCodeStore) Save(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[types.Kind(name)] = append([]byte(nil), data...)
	return nil
}

// FetchCalls 返回 Fetch 调用记录
func (m *MockCodeStore) FetchCalls() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FetchCall(nil), m.fetchCalls...)
}
