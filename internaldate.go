package imap

import (
	"fmt"
	"strings"
	"time"
)

// internalDateLayout 是 RFC 3501 INTERNALDATE 的 Go 时间格式化布局：
// "DD-Mon-YYYY HH:MM:SS ±HHMM"，整体再被双引号包裹。
const internalDateLayout = `"02-Jan-2006 15:04:05 -0700"`

// FormatInternalDate 把 v 转换为 APPEND 所需的 INTERNALDATE 字符串表示。
//
// 接受的输入：
//   - time.Time：任意非零值，按其自身的时区偏移格式化（Go 的 time.Time 总是
//     携带一个 Location，偏移为零的 UTC 时间同样被接受；这里只排斥零值时间，
//     充当原 Python 实现里 "naive datetime 被拒绝" 规则的等价物）。
//   - 整数/浮点数形式的 UNIX 纪元秒。
//   - 已经加好双引号的字符串：原样透传，假定其格式已经正确。
func FormatInternalDate(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "", fmt.Errorf("imap: zero time.Time is not a valid INTERNALDATE")
		}
		return formatTime(t), nil
	case int64:
		return formatTime(time.Unix(t, 0)), nil
	case int:
		return formatTime(time.Unix(int64(t), 0)), nil
	case float64:
		sec := int64(t)
		nsec := int64((t - float64(sec)) * 1e9)
		return formatTime(time.Unix(sec, nsec)), nil
	case string:
		if len(t) >= 2 && strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`) {
			return t, nil
		}
		return "", fmt.Errorf("imap: string INTERNALDATE must already be quoted, got %q", t)
	default:
		return "", fmt.Errorf("imap: unsupported INTERNALDATE input of type %T", v)
	}
}

func formatTime(t time.Time) string {
	return t.Format(internalDateLayout)
}
