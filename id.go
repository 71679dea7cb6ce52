package imap

import "fmt"

const (
	idMaxPairsCount = 30
	idMaxFieldLen   = 30
	idMaxValueLen   = 1024
)

// IDField 是一对 RFC 2971 ID 字段名/取值。Value 为 nil 表示 NIL。
type IDField struct {
	Name  string
	Value *string
}

// IDFields 是一组按调用方给定顺序排列的 ID 字段；顺序在线上可见，但协议
// 本身并不要求任何特定顺序。
type IDFields []IDField

// IDString 是一个便捷构造器，返回一个非 NIL 的 IDField。
func IDString(name, value string) IDField {
	return IDField{Name: name, Value: &value}
}

// EncodeID 把 fields 编码为 RFC 2971 的 ID 命令参数：
// "(F1 V1 F2 V2 …)"，或在 fields 为空时编码为 "NIL"。
func EncodeID(fields IDFields) (string, error) {
	if len(fields) == 0 {
		return "NIL", nil
	}
	if len(fields) > idMaxPairsCount {
		return "", fmt.Errorf("imap: ID must not carry more than %d field/value pairs", idMaxPairsCount)
	}

	out := "("
	for i, f := range fields {
		if len(f.Name) > idMaxFieldLen {
			return "", fmt.Errorf("imap: ID field %q exceeds %d characters", f.Name, idMaxFieldLen)
		}
		if i > 0 {
			out += " "
		}
		out += Quote(f.Name) + " "
		if f.Value == nil {
			out += "NIL"
			continue
		}
		if len(*f.Value) > idMaxValueLen {
			return "", fmt.Errorf("imap: ID value for field %q exceeds %d characters", f.Name, idMaxValueLen)
		}
		out += Quote(*f.Value)
	}
	out += ")"
	return out, nil
}
