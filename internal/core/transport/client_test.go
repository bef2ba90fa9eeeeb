package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/pkg/types"
)

func testConfig() config.TransportConfig {
	cfg := config.DefaultTransportConfig()
	cfg.RequestTimeout = config.Duration(2 * time.Second)
	cfg.RetryDelay = config.Duration(time.Millisecond)
	cfg.RetryMaxDelay = config.Duration(5 * time.Millisecond)
	return cfg
}

// serve 启动测试服务器并统计请求次数
func serve(t *testing.T, h http.HandlerFunc) (types.Endpoint, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return types.NormalizeEndpoint(srv.URL), &hits
}

// deadEndpoint 返回一个拒绝连接的地址
func deadEndpoint(t *testing.T) types.Endpoint {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	ep := types.NormalizeEndpoint(srv.URL)
	srv.Close()
	return ep
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Probe(t *testing.T) {
	c := New(testConfig())
	ctx := context.Background()

	t.Run("Peer", func(t *testing.T) {
		var ep types.Endpoint
		ep, hits := serve(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/", r.URL.Path)
			writeJSON(w, types.Identity{App: types.AppName, URL: ep})
		})

		id, err := c.Probe(ctx, ep)
		require.NoError(t, err)
		assert.True(t, id.IsPeer())
		assert.Equal(t, ep, id.URL)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("OtherApp", func(t *testing.T) {
		ep, hits := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]string{"app": "something-else"})
		})

		_, err := c.Probe(ctx, ep)
		assert.ErrorIs(t, err, ErrNotPeer)
		assert.ErrorIs(t, err, types.ErrProtocol)
		assert.Equal(t, int32(1), hits.Load(), "a definite negative is not retried")
	})

	t.Run("NotJSON", func(t *testing.T) {
		ep, hits := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "<html>hello</html>")
		})

		_, err := c.Probe(ctx, ep)
		assert.ErrorIs(t, err, ErrNotPeer)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("NotFound", func(t *testing.T) {
		ep, hits := serve(t, http.NotFound)

		_, err := c.Probe(ctx, ep)
		assert.ErrorIs(t, err, ErrNotPeer)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("TransientThenPeer", func(t *testing.T) {
		var ep types.Endpoint
		var n atomic.Int32
		ep, hits := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			if n.Add(1) == 1 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			writeJSON(w, types.Identity{App: types.AppName, URL: ep})
		})

		id, err := c.Probe(ctx, ep)
		require.NoError(t, err)
		assert.True(t, id.IsPeer())
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("AlwaysFailing", func(t *testing.T) {
		ep, hits := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		})

		_, err := c.Probe(ctx, ep)
		assert.Error(t, err)
		assert.Equal(t, int32(testConfig().RetryAttempts), hits.Load())
	})

	t.Run("Unreachable", func(t *testing.T) {
		_, err := c.Probe(ctx, deadEndpoint(t))
		assert.ErrorIs(t, err, types.ErrRemoteCall)
		assert.NotErrorIs(t, err, ErrNotPeer)
	})

	t.Log("✅ 身份探测测试通过")
}

func TestClient_ListObjects(t *testing.T) {
	c := New(testConfig())

	ep, _ := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/objects", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("remote"))
		_, _ = io.WriteString(w, `[{"name":"calculator","isLocal":true},{"name":"clock","url":"http://localhost:3005","isLocal":false}]`)
	})

	objs, err := c.ListObjects(context.Background(), ep)
	require.NoError(t, err)
	assert.Equal(t, []types.ObjectInfo{
		{Name: "calculator", IsLocal: true},
		{Name: "clock", URL: "http://localhost:3005"},
	}, objs)

	_, err = c.ListObjects(context.Background(), deadEndpoint(t))
	assert.ErrorIs(t, err, types.ErrRemoteCall)
}

func TestClient_Call(t *testing.T) {
	c := New(testConfig())
	ctx := context.Background()

	t.Run("Result", func(t *testing.T) {
		ep, _ := serve(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/rpc/calculator", r.URL.Path)

			var req types.CallEnvelope
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "multiply", req.Method)
			assert.JSONEq(t, `[2,3]`, string(req.Params))

			_, _ = io.WriteString(w, `{"id":null,"result":6,"error":null}`)
		})

		res, err := c.Call(ctx, ep, "calculator", &types.CallEnvelope{Method: "multiply", Params: json.RawMessage(`[2,3]`)})
		require.NoError(t, err)
		assert.NoError(t, res.Err())
		assert.Equal(t, float64(6), res.Result)
	})

	t.Run("CompositeName", func(t *testing.T) {
		ep, _ := serve(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rpc/statistics/42", r.URL.Path)
			_, _ = io.WriteString(w, `{"id":"x","result":null,"error":{"code":"not_found","message":"no method"}}`)
		})

		res, err := c.Call(ctx, ep, "statistics/42", &types.CallEnvelope{Method: "median"})
		require.NoError(t, err)
		assert.ErrorIs(t, res.Err(), types.ErrNotFound)
	})

	t.Run("ServerErrorNotRetried", func(t *testing.T) {
		ep, hits := serve(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		_, err := c.Call(ctx, ep, "calculator", &types.CallEnvelope{Method: "add"})
		assert.ErrorIs(t, err, types.ErrRemoteCall)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("Unreachable", func(t *testing.T) {
		_, err := c.Call(ctx, deadEndpoint(t), "calculator", &types.CallEnvelope{Method: "add"})
		assert.ErrorIs(t, err, types.ErrRemoteCall)
	})

	t.Run("Cancelled", func(t *testing.T) {
		release := make(chan struct{})
		ep, _ := serve(t, func(w http.ResponseWriter, r *http.Request) {
			<-release
		})
		// 在 srv.Close 之前放行阻塞的处理函数
		t.Cleanup(func() { close(release) })
		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := c.Call(cctx, ep, "calculator", &types.CallEnvelope{Method: "add"})
		assert.ErrorIs(t, err, types.ErrRemoteCall)
	})
}

func TestClient_FetchCode(t *testing.T) {
	c := New(testConfig())

	ep, _ := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/objects/clock/code" {
			_, _ = io.WriteString(w, "clock source")
			return
		}
		http.NotFound(w, r)
	})

	data, err := c.FetchCode(context.Background(), ep, "clock")
	require.NoError(t, err)
	assert.Equal(t, []byte("clock source"), data)

	_, err = c.FetchCode(context.Background(), ep, "ghost")
	assert.ErrorIs(t, err, types.ErrCodeUnavailable)
}

func TestClient_SingleAttempt(t *testing.T) {
	cfg := testConfig()
	cfg.RetryAttempts = 1
	c := New(cfg)

	ep, hits := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	})

	_, err := c.ListObjects(context.Background(), ep)
	assert.ErrorIs(t, err, types.ErrRemoteCall)
	assert.Equal(t, int32(1), hits.Load())
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "/rpc/calculator", objectPath("/rpc/", "calculator", ""))
	assert.Equal(t, "/rpc/statistics/42", objectPath("/rpc/", "statistics/42", ""))
	assert.Equal(t, "/objects/a%20b/code", objectPath("/objects/", "a b", "/code"))
}
