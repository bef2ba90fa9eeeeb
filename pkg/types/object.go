package types

import "strings"

// ============================================================================
//                              Location
// ============================================================================

// Location 对象的分派位置
//
// 零值表示 Local；Endpoint 非空表示 Remote(Endpoint)。
type Location struct {
	Endpoint Endpoint
}

// LocalLocation 本地位置
func LocalLocation() Location {
	return Location{}
}

// RemoteLocation 远程位置
func RemoteLocation(ep Endpoint) Location {
	return Location{Endpoint: ep}
}

// IsLocal 是否本地
func (l Location) IsLocal() bool {
	return l.Endpoint == ""
}

// String 返回可读形式
func (l Location) String() string {
	if l.IsLocal() {
		return "local"
	}
	return "remote(" + string(l.Endpoint) + ")"
}

// ============================================================================
//                              ObjectEntry
// ============================================================================

// ObjectEntry 对象目录条目的快照
//
// 实例本身由 ObjectRegistry 持有，快照只报告是否存在实例。
type ObjectEntry struct {
	// Name 对象名，可为组合形式 "kind/id"
	Name string

	// Location 当前分派位置
	Location Location

	// Instantiated 本地是否持有实例（Remote 状态下也可能保留）
	Instantiated bool
}

// IsLocal 是否本地分派
func (e ObjectEntry) IsLocal() bool {
	return e.Location.IsLocal()
}

// Info 转换为列表格式
func (e ObjectEntry) Info() ObjectInfo {
	return ObjectInfo{
		Name:    e.Name,
		URL:     e.Location.Endpoint,
		IsLocal: e.Location.IsLocal(),
	}
}

// ObjectInfo 对象列表条目（GET /objects 的线上格式）
type ObjectInfo struct {
	Name    string   `json:"name"`
	URL     Endpoint `json:"url,omitempty"`
	IsLocal bool     `json:"isLocal"`
}

// Kind 返回对象名中的类型部分
//
//	Kind("calculator")    == "calculator"
//	Kind("statistics/42") == "statistics"
func Kind(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return name
}
