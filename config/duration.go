package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Duration 配置文件中的时间间隔
//
// JSON 中可写 Go 时长字符串（"5s"、"250ms"），也可写毫秒整数：
// 旧部署的配置把扫描间隔写作 5000。负值无效。
type Duration time.Duration

// UnmarshalJSON 解析时长字符串或毫秒数
func (d *Duration) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}

	var v time.Duration
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("duration %q: %w", s, err)
		}
		v = parsed
	} else {
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("duration %s: want a string like \"5s\" or integer milliseconds", raw)
		}
		v = time.Duration(ms) * time.Millisecond
	}

	if v < 0 {
		return fmt.Errorf("duration %s is negative", raw)
	}
	*d = Duration(v)
	return nil
}

// MarshalJSON 总是输出字符串形式
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }
