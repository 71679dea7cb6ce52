// Package imap 包含引擎与调用方共用的类型：连接状态、能力集合、消息标志、
// 命令规格表，以及若干与传输层无关的编码辅助函数。
//
// 本包不执行任何 I/O；真正的协议引擎在子包 imapclient 中。
package imap

import "fmt"

// ConnState 描述一条连接在其生命周期中所处的状态。
//
// 状态大体沿着 Started -> Connected -> (NotAuthenticated|Authenticated) ->
// Selected -> Logout 的方向迁移，由问候行或命令的完成触发，不存在自发的
// 状态跃迁。两处例外：CLOSE 成功后从 Selected 回到 Authenticated；
// Client.Logout 无论 LOGOUT 的结果如何都进入 Logout。
type ConnState int

const (
	ConnStateStarted          ConnState = iota // 尚未建立传输连接
	ConnStateConnected                          // 传输已建立，等待服务器问候
	ConnStateNotAuthenticated                   // 已收到问候，尚未登录
	ConnStateAuthenticated                      // 已登录，未选择邮箱
	ConnStateSelected                           // 已选择（或 EXAMINE）某个邮箱
	ConnStateLogout                             // 已发出 LOGOUT 并被确认
)

// String 实现 fmt.Stringer。
func (s ConnState) String() string {
	switch s {
	case ConnStateStarted:
		return "started"
	case ConnStateConnected:
		return "connected"
	case ConnStateNotAuthenticated:
		return "not authenticated"
	case ConnStateAuthenticated:
		return "authenticated"
	case ConnStateSelected:
		return "selected"
	case ConnStateLogout:
		return "logout"
	default:
		panic(fmt.Errorf("imap: unknown connection state %d", int(s)))
	}
}
