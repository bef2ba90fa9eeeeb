package types

import (
	"encoding/json"
	"time"
)

// ScanReport 一次发现（或扫描）的结果
type ScanReport struct {
	// Connected 本轮新连接的节点
	Connected []Endpoint

	// Disconnected 本轮断开的节点
	Disconnected []Endpoint

	// Time 本轮耗时
	Time time.Duration
}

// MarshalJSON 输出 {connected, disconnected, time}，time 单位为毫秒
func (r ScanReport) MarshalJSON() ([]byte, error) {
	connected := r.Connected
	if connected == nil {
		connected = []Endpoint{}
	}
	disconnected := r.Disconnected
	if disconnected == nil {
		disconnected = []Endpoint{}
	}
	return json.Marshal(struct {
		Connected    []Endpoint `json:"connected"`
		Disconnected []Endpoint `json:"disconnected"`
		Time         int64      `json:"time"`
	}{connected, disconnected, r.Time.Milliseconds()})
}

// UnmarshalJSON 解析 {connected, disconnected, time}
func (r *ScanReport) UnmarshalJSON(data []byte) error {
	var w struct {
		Connected    []Endpoint `json:"connected"`
		Disconnected []Endpoint `json:"disconnected"`
		Time         int64      `json:"time"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Connected = w.Connected
	r.Disconnected = w.Disconnected
	r.Time = time.Duration(w.Time) * time.Millisecond
	return nil
}
