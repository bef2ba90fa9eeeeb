package types

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// AppName 身份探测响应中标识本软件族的名称
const AppName = "distributed-app"

// ============================================================================
//                              Endpoint
// ============================================================================

// Endpoint 节点的基础访问地址
//
// 规范形式为 scheme://host:port，scheme 与 host 小写，不带结尾斜杠。
// 空值表示"无地址"，在对象目录中等价于本地。
type Endpoint string

// NormalizeEndpoint 规范化地址字符串
//
// 缺省 scheme 时补全为 http；无法解析或缺少主机部分时返回空 Endpoint。
func NormalizeEndpoint(raw string) Endpoint {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}

	return Endpoint(strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/"))
}

// EndpointFor 根据主机和端口构造 http 地址
func EndpointFor(host string, port int) Endpoint {
	return Endpoint("http://" + strings.ToLower(net.JoinHostPort(host, strconv.Itoa(port))))
}

// String 返回地址字符串
func (e Endpoint) String() string {
	return string(e)
}

// IsZero 是否为空地址
func (e Endpoint) IsZero() bool {
	return e == ""
}

// Port 返回地址中的端口，未指定端口时按 scheme 推断
func (e Endpoint) Port() int {
	u, err := url.Parse(string(e))
	if err != nil {
		return 0
	}
	if p := u.Port(); p != "" {
		n, _ := strconv.Atoi(p)
		return n
	}
	switch u.Scheme {
	case "https":
		return 443
	case "http":
		return 80
	}
	return 0
}

// URL 拼接路径，path 应以 / 开头
func (e Endpoint) URL(path string) string {
	return string(e) + path
}

// ============================================================================
//                              Peer
// ============================================================================

// Peer 已连接的对端节点
type Peer struct {
	// Endpoint 对端地址（唯一键）
	Endpoint Endpoint `json:"url"`

	// LastConfirmed 最近一次身份确认时间
	LastConfirmed time.Time `json:"lastConfirmed"`
}

// ============================================================================
//                              Identity
// ============================================================================

// Identity 身份探测响应体（GET /）
type Identity struct {
	App           string   `json:"app"`
	URL           Endpoint `json:"url"`
	Description   string   `json:"description,omitempty"`
	Documentation string   `json:"documentation,omitempty"`
}

// IsPeer 响应方是否属于本软件族
func (i *Identity) IsPeer() bool {
	return i != nil && i.App == AppName
}
