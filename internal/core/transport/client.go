package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/dep2p/go-dapp/config"
	"github.com/dep2p/go-dapp/internal/util/logger"
	"github.com/dep2p/go-dapp/pkg/interfaces"
	"github.com/dep2p/go-dapp/pkg/types"
)

var log = logger.Logger("transport")

// maxBodySize 响应体上限
const maxBodySize = 8 << 20

// ErrNotPeer 对端不是本软件族的节点
var ErrNotPeer = fmt.Errorf("%w: not a %s node", types.ErrProtocol, types.AppName)

// 确保 Client 实现接口
var _ interfaces.Transport = (*Client)(nil)

// statusError 非 2xx 响应
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Client HTTP 传输客户端
type Client struct {
	http  *http.Client
	cfg   config.TransportConfig
	clock clock.Clock
}

// Option 客户端选项
type Option func(*Client)

// WithClock 设置重试使用的时钟
func WithClock(c clock.Clock) Option {
	return func(cl *Client) {
		cl.clock = c
	}
}

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) {
		cl.http = hc
	}
}

// New 创建传输客户端
func New(cfg config.TransportConfig, opts ...Option) *Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost

	c := &Client{
		http: &http.Client{
			Transport: tr,
			Timeout:   cfg.RequestTimeout.Duration(),
		},
		cfg:   cfg,
		clock: clock.WallClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe 身份探测
//
// 对端响应但身份不符时返回 ErrNotPeer，不重试。
func (c *Client) Probe(ctx context.Context, ep types.Endpoint) (*types.Identity, error) {
	var id types.Identity
	err := c.withRetry(ctx, "probe", ep, isTransient, func() error {
		return c.getJSON(ctx, ep.URL("/"), &id)
	})
	if err != nil {
		var se *statusError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &se) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotPeer, ep, err)
		}
		return nil, fmt.Errorf("%w: probe %s: %v", types.ErrRemoteCall, ep, err)
	}
	if !id.IsPeer() {
		return nil, fmt.Errorf("%w: %s answered app %q", ErrNotPeer, ep, id.App)
	}
	return &id, nil
}

// ListObjects 获取对端本地托管的对象
func (c *Client) ListObjects(ctx context.Context, ep types.Endpoint) ([]types.ObjectInfo, error) {
	var objs []types.ObjectInfo
	err := c.withRetry(ctx, "list objects", ep, isTransient, func() error {
		objs = nil
		return c.getJSON(ctx, ep.URL("/objects?remote=false"), &objs)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list objects at %s: %v", types.ErrRemoteCall, ep, err)
	}
	return objs, nil
}

// Call 发送调用信封
//
// 只在拨号失败时重试；返回的错误信封由调用方解释。
func (c *Client) Call(ctx context.Context, ep types.Endpoint, name string, req *types.CallEnvelope) (*types.ResultEnvelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", types.ErrProtocol, err)
	}

	var res types.ResultEnvelope
	err = c.withRetry(ctx, "call", ep, isDialError, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL(objectPath("/rpc/", name, "")), bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		data, err := c.do(httpReq)
		if err != nil {
			return err
		}
		res = types.ResultEnvelope{}
		if err := json.Unmarshal(data, &res); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: call %s.%s at %s: %v", types.ErrRemoteCall, name, req.Method, ep, err)
	}
	return &res, nil
}

// FetchCode 获取对象代码
func (c *Client) FetchCode(ctx context.Context, ep types.Endpoint, name string) ([]byte, error) {
	var data []byte
	err := c.withRetry(ctx, "fetch code", ep, isTransient, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL(objectPath("/objects/", name, "/code")), nil)
		if err != nil {
			return err
		}
		data, err = c.do(req)
		return err
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s at %s", types.ErrCodeUnavailable, name, ep)
		}
		return nil, fmt.Errorf("%w: fetch code %s at %s: %v", types.ErrRemoteCall, name, ep, err)
	}
	return data, nil
}

// CloseIdleConnections 关闭空闲连接
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// withRetry 以指数退避执行 fn，retryable 判定可重试的错误
func (c *Client) withRetry(ctx context.Context, op string, ep types.Endpoint, retryable func(error) bool, fn func() error) error {
	if c.cfg.RetryAttempts <= 1 {
		return fn()
	}

	err := retry.Call(retry.CallArgs{
		Func: fn,
		IsFatalError: func(err error) bool {
			return ctx.Err() != nil || !retryable(err)
		},
		NotifyFunc: func(err error, attempt int) {
			log.Debug("request failed, retrying", "op", op, "endpoint", ep, "attempt", attempt, "err", err)
		},
		Attempts:    c.cfg.RetryAttempts,
		Delay:       c.cfg.RetryDelay.Duration(),
		MaxDelay:    c.cfg.RetryMaxDelay.Duration(),
		BackoffFunc: retry.DoubleDelay,
		Clock:       c.clock,
		Stop:        ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) || retry.IsDurationExceeded(err) || retry.IsRetryStopped(err) {
		return retry.LastError(err)
	}
	return err
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	data, err := c.do(req)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// do 发送请求并读取完整响应体
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(truncate(data, 256)))}
	}
	return data, nil
}

// objectPath 拼接对象路径，组合名的每一段分别转义
func objectPath(prefix, name, suffix string) string {
	segs := strings.Split(name, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return prefix + strings.Join(segs, "/") + suffix
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// isTransient 未收到响应，或收到 5xx/429
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// isDialError 连接尚未建立（请求未发出）
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
