package imap

import (
	"strconv"
	"strings"
)

// NumSet 是一组标识消息的数字：要么是消息序号（SeqSet），要么是 UID（UIDSet）。
// 它只负责把数字集合编码成 IMAP 的 sequence-set 语法，不做网络 I/O。
type NumSet interface {
	// String 返回该集合的 IMAP 线格式，例如 "1:3,5,9:*"。
	String() string
	// Dynamic 在集合含有 "*" 或 "n:*" 这类会随邮箱变化而变化的区间时返回 true。
	Dynamic() bool
}

// 0 在一个数字范围里代表 "*"（最大的序号/UID，或 SEARCHRES 里的占位符）。
const star = 0

// SeqRange 是消息序号的一个闭区间，Start/Stop 为 0 表示 "*"。
type SeqRange struct {
	Start, Stop uint32
}

func (r SeqRange) String() string {
	if r.Start == r.Stop {
		return formatNum(r.Start)
	}
	return formatNum(r.Start) + ":" + formatNum(r.Stop)
}

func formatNum(n uint32) string {
	if n == star {
		return "*"
	}
	return strconv.FormatUint(uint64(n), 10)
}

// SeqSet 是一组消息序号。
type SeqSet []SeqRange

var _ NumSet = SeqSet(nil)

// SeqSetNum 构造一个包含给定序号的 SeqSet。值 0 表示 "*"。
func SeqSetNum(nums ...uint32) SeqSet {
	var s SeqSet
	s.AddNum(nums...)
	return s
}

// AddNum 把若干离散序号追加进集合，每个各自成为一个单点区间。
func (s *SeqSet) AddNum(nums ...uint32) {
	for _, n := range nums {
		*s = append(*s, SeqRange{n, n})
	}
}

// AddRange 把 [start, stop] 区间追加进集合。
func (s *SeqSet) AddRange(start, stop uint32) {
	*s = append(*s, SeqRange{start, stop})
}

// Dynamic 判断集合中是否存在以 "*" 结尾（或本身就是 "*"）的区间。
func (s SeqSet) Dynamic() bool {
	for _, r := range s {
		if r.Start == star || r.Stop == star {
			return true
		}
	}
	return false
}

// Contains 判断非零序号 num 是否落在集合内的某个区间中。
func (s SeqSet) Contains(num uint32) bool {
	if num == star {
		return false
	}
	for _, r := range s {
		lo, hi := r.Start, r.Stop
		if lo == star {
			lo = num // "*" 在比较时视作与被测值相等的一端
		}
		if hi == star {
			hi = num
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if num >= lo && num <= hi {
			return true
		}
	}
	return false
}

// String 返回 SeqSet 的 IMAP 线格式，多个区间以逗号分隔。
func (s SeqSet) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// UID 是消息的持久化唯一标识符，在不同会话间保持稳定（与消息序号不同）。
type UID uint32

// UIDRange 是一个 UID 闭区间，Start/Stop 为 0 表示 "*"。
type UIDRange struct {
	Start, Stop UID
}

func (r UIDRange) String() string {
	if r.Start == r.Stop {
		return formatNum(uint32(r.Start))
	}
	return formatNum(uint32(r.Start)) + ":" + formatNum(uint32(r.Stop))
}

// UIDSet 是一组消息 UID。
type UIDSet []UIDRange

var _ NumSet = UIDSet(nil)

// UIDSetNum 构造一个包含给定 UID 的 UIDSet。
func UIDSetNum(uids ...UID) UIDSet {
	var s UIDSet
	s.AddNum(uids...)
	return s
}

// AddNum 把若干离散 UID 追加进集合。
func (s *UIDSet) AddNum(uids ...UID) {
	for _, u := range uids {
		*s = append(*s, UIDRange{u, u})
	}
}

// AddRange 把 [start, stop] 区间追加进集合。
func (s *UIDSet) AddRange(start, stop UID) {
	*s = append(*s, UIDRange{start, stop})
}

// Dynamic 判断集合中是否存在 "*" 区间。
func (s UIDSet) Dynamic() bool {
	for _, r := range s {
		if r.Start == star || r.Stop == star {
			return true
		}
	}
	return false
}

// String 返回 UIDSet 的 IMAP 线格式。
func (s UIDSet) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
