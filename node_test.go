package dapp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dapp/pkg/catalog"
)

type greeter struct{}

func (greeter) Hello(name string) string { return "hello " + name }

func testOptions() []Option {
	return []Option{
		WithCatalog(catalog.MustNew(catalog.Type{
			Name:    "greeter",
			New:     func() any { return greeter{} },
			Methods: map[string][]string{"hello": {"name"}},
		})),
		WithPortRange(47320, 47324),
		WithMonitor(false, 0),
		WithInMemoryCodeStore(),
		WithMetrics(false),
	}
}

// TestNode_Lifecycle 测试节点状态转换
func TestNode_Lifecycle(t *testing.T) {
	node, err := New(testOptions()...)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, node.State())
	assert.True(t, node.URL().IsZero())
	assert.Nil(t, node.Objects())

	_, err = node.Invoke(context.Background(), "greeter", "hello", "x")
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, node.Start(context.Background()))
	assert.Equal(t, StateRunning, node.State())
	assert.ErrorIs(t, node.Start(context.Background()), ErrAlreadyStarted)
	assert.False(t, node.URL().IsZero())

	require.NoError(t, node.Close())
	require.NoError(t, node.Close())
	assert.Equal(t, StateStopped, node.State())
	assert.ErrorIs(t, node.Start(context.Background()), ErrNodeClosed)

	_, err = node.Scan(context.Background())
	assert.ErrorIs(t, err, ErrNodeClosed)
}

// TestNode_Invoke 测试同步与异步调用
func TestNode_Invoke(t *testing.T) {
	ctx := context.Background()
	node, err := Start(ctx, testOptions()...)
	require.NoError(t, err)
	defer node.Close()

	got, err := node.Invoke(ctx, "greeter", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	// 第一次调用按需创建了本地对象
	entry, ok := node.Objects().Resolve("greeter")
	require.True(t, ok)
	assert.True(t, entry.Location.Endpoint.IsZero())

	select {
	case res := <-node.InvokeAsync(ctx, "greeter", "hello", "async"):
		require.NoError(t, res.Err)
		assert.Equal(t, "hello async", res.Result)
	case <-time.After(5 * time.Second):
		t.Fatal("InvokeAsync did not complete")
	}

	_, err = node.Invoke(ctx, "unknown", "hello", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestNode_InvokeAsyncNotStarted 未启动时异步调用立即返回错误
func TestNode_InvokeAsyncNotStarted(t *testing.T) {
	node, err := New(testOptions()...)
	require.NoError(t, err)

	res, ok := <-node.InvokeAsync(context.Background(), "greeter", "hello", "x")
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, ErrNotStarted)

	_, ok = <-node.InvokeAsync(context.Background(), "greeter", "hello", "x")
	assert.True(t, ok)
}

// TestNode_ConnectDisconnect 测试手动加入与移除节点
func TestNode_ConnectDisconnect(t *testing.T) {
	ctx := context.Background()
	node, err := Start(ctx, testOptions()...)
	require.NoError(t, err)
	defer node.Close()

	require.NoError(t, node.Connect("localhost:4999"))
	peers := node.Nodes().List()
	require.Len(t, peers, 1)
	assert.Equal(t, "http://localhost:4999", peers[0].Endpoint.String())

	require.NoError(t, node.Disconnect("http://localhost:4999/"))
	assert.Empty(t, node.Nodes().List())

	assert.Error(t, node.Connect(""))
}

// TestOptions_Validation 测试非法选项
func TestOptions_Validation(t *testing.T) {
	_, err := New(WithPortRange(10, 5))
	assert.Error(t, err)

	_, err = New(WithListenPort(70000))
	assert.Error(t, err)

	_, err = New(WithConfig(nil))
	assert.Error(t, err)

	_, err = New(WithCallTimeout(0))
	assert.Error(t, err)
}
