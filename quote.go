package imap

import "strings"

// Quote 按 RFC 3501 第 9 节把 s 编码为一个带引号的字符串：反斜杠和双引号各自被
// 转义，整体再用双引号包起来。
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
