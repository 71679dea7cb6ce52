package imap

import "strings"

// Cap 表示服务器通过 CAPABILITY 响应公告的一项能力。
type Cap string

// 本引擎认识并在其行为中用到的能力。
//
// 参见 https://www.iana.org/assignments/imap-capabilities/
const (
	CapIMAP4rev1 Cap = "IMAP4REV1" // RFC 3501
	CapIMAP4     Cap = "IMAP4"     // 古老的 RFC 1730 标识，仍需识别

	CapStartTLS      Cap = "STARTTLS"      // STARTTLS，RFC 3501
	CapLoginDisabled Cap = "LOGINDISABLED" // 明文 LOGIN 被禁用

	CapIdle      Cap = "IDLE"      // IDLE，RFC 2177
	CapUIDPlus   Cap = "UIDPLUS"   // UID EXPUNGE，RFC 4315
	CapMove      Cap = "MOVE"      // MOVE，RFC 6851
	CapNamespace Cap = "NAMESPACE" // NAMESPACE，RFC 2342
	CapEnable    Cap = "ENABLE"    // ENABLE，RFC 5161
	CapID        Cap = "ID"        // ID，RFC 2971
	CapSASLIR    Cap = "SASL-IR"   // 初始响应内联在 AUTHENTICATE 中，RFC 4959
	CapCompress  Cap = "COMPRESS=DEFLATE" // COMPRESS=DEFLATE，RFC 4978
	CapACL       Cap = "ACL"       // ACL，RFC 4314
	CapQuota     Cap = "QUOTA"     // QUOTA，RFC 2087

	CapAuthPlain   Cap = "AUTH=PLAIN"
	CapAuthXOAuth2 Cap = "AUTH=XOAUTH2"
)

// CapSet 是能力的集合，建模为 Cap -> struct{} 的映射以获得 O(1) 查询。
type CapSet map[Cap]struct{}

// NewCapSet 从一组能力令牌（CAPABILITY 响应按空格拆开后的各项）构造一个能力集合。
func NewCapSet(fields ...string) CapSet {
	set := make(CapSet, len(fields))
	for _, f := range fields {
		set[Cap(strings.ToUpper(f))] = struct{}{}
	}
	return set
}

// Has 判断能力 c 是否在集合中（大小写不敏感）。
func (set CapSet) Has(c Cap) bool {
	_, ok := set[Cap(strings.ToUpper(string(c)))]
	return ok
}

// Add 将能力加入集合。
func (set CapSet) Add(c Cap) {
	set[Cap(strings.ToUpper(string(c)))] = struct{}{}
}

// Union 返回 set 与 other 的并集，不修改任一输入。
func (set CapSet) Union(other CapSet) CapSet {
	out := make(CapSet, len(set)+len(other))
	for c := range set {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// AuthMechanisms 返回所有公告的 AUTH=XXX 机制名（不含 "AUTH=" 前缀）。
func (set CapSet) AuthMechanisms() []string {
	var mechs []string
	for c := range set {
		if s, ok := strings.CutPrefix(string(c), "AUTH="); ok {
			mechs = append(mechs, s)
		}
	}
	return mechs
}

// allowedVersions 是 CAPABILITY 响应中可以被识别为协议版本的令牌。
var allowedVersions = map[Cap]bool{
	CapIMAP4rev1: true,
	CapIMAP4:     true,
}

// NegotiatedVersion 在 capabilityTokens 中查找第一个属于 {IMAP4REV1, IMAP4}
// 的令牌（大小写不敏感），返回其规范大写形式。未找到时 ok 为 false。
func NegotiatedVersion(capabilityTokens []string) (version string, ok bool) {
	for _, tok := range capabilityTokens {
		c := Cap(strings.ToUpper(tok))
		if allowedVersions[c] {
			return string(c), true
		}
	}
	return "", false
}
