package mocks

import (
	"context"
	"sync"

	"github.com/dep2p/go-dapp/pkg/interfaces"
)

var (
	_ interfaces.Object        = (*MockObject)(nil)
	_ interfaces.ObjectFactory = (*MockFactory)(nil)
)

// MockObject 模拟 Object 接口实现
type MockObject struct {
	InvokeFunc func(ctx context.Context, method string, args []any) (any, error)

	mu    sync.Mutex
	calls []InvokeCall
}

// InvokeCall 记录 Invoke 调用
type InvokeCall struct {
	Method string
	Args   []any
}

// Invoke 调用方法，默认返回 nil
func (m *MockObject) Invoke(ctx context.Context, method string, args []any) (any, error) {
	m.mu.Lock()
	m.calls = append(m.calls, InvokeCall{Method: method, Args: args})
	m.mu.Unlock()

	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, method, args)
	}
	return nil, nil
}

// Calls 返回调用记录
func (m *MockObject) Calls() []InvokeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]InvokeCall(nil), m.calls...)
}

// MockFactory 模拟 ObjectFactory，记录创建次数
type MockFactory struct {
	CreateFunc func(name string) (interfaces.Object, error)

	mu      sync.Mutex
	created []string
}

// Create 创建对象，默认返回新的 MockObject
func (m *MockFactory) Create(name string) (interfaces.Object, error) {
	m.mu.Lock()
	m.created = append(m.created, name)
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(name)
	}
	return &MockObject{}, nil
}

// Created 返回创建记录
func (m *MockFactory) Created() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.created...)
}
