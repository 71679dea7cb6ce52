package imapclient

import (
	"math/rand"
	"strconv"
	"sync/atomic"
)

// tagAlphabet 是 int2ap 使用的数字表：把一个随机整数转换成一个只由
// A-P 组成的字符串前缀，复刻标准库 imaplib（以及 aioimaplib）的 int2ap。
const tagAlphabet = "ABCDEFGHIJKLMNOP"

// int2ap 把一个非负整数转换为以 A-P 为数字的字符串表示（即把数字看成
// 16 进制，再把每一位映射到 A-P）。
func int2ap(num uint32) string {
	if num == 0 {
		return string(tagAlphabet[0])
	}
	var buf []byte
	for num > 0 {
		buf = append([]byte{tagAlphabet[num%16]}, buf...)
		num /= 16
	}
	return string(buf)
}

// tagAllocator 为一条连接生成单调递增、互不相同的带标签命令标签，形式为
// "<Prefix><N>"，Prefix 是随机生成的 2-4 个字母（A-P）的字符串，在连接的
// 整个生命周期内固定；N 从 0 开始单调递增，因此标签在一次会话内永不重复
// （可测试属性 §8.4）。
type tagAllocator struct {
	prefix string
	next   atomic.Uint64
}

func newTagAllocator() *tagAllocator {
	// 4096..65535 转成 A-P 进制后恰好都是 4 个字母（位于 2-4 个字母的范围内）。
	n := uint32(rand.Intn(65535-4096+1) + 4096)
	return &tagAllocator{prefix: int2ap(n)}
}

// newTag 返回下一个标签。
func (a *tagAllocator) newTag() string {
	n := a.next.Add(1) - 1
	return a.prefix + strconv.FormatUint(n, 10)
}
