package imap

// Flag 是一个消息标志，定义于 RFC 3501 第 2.3.2 节。
type Flag string

const (
	// 系统标志。
	FlagSeen     Flag = "\\Seen"
	FlagAnswered Flag = "\\Answered"
	FlagFlagged  Flag = "\\Flagged"
	FlagDeleted  Flag = "\\Deleted"
	FlagDraft    Flag = "\\Draft"
	FlagRecent   Flag = "\\Recent" // 只读，服务器维护，不能通过 STORE 设置

	// 通配符，出现在 PERMANENTFLAGS 响应中，表示允许创建新的关键字标志。
	FlagWildcard Flag = "\\*"
)

// MailboxAttr 是 LIST/LSUB/NAMESPACE 响应里出现的邮箱属性（RFC 3501 第 7.2.2 节）。
type MailboxAttr string

const (
	MailboxAttrNoInferiors MailboxAttr = "\\Noinferiors"
	MailboxAttrNoSelect    MailboxAttr = "\\Noselect"
	MailboxAttrMarked      MailboxAttr = "\\Marked"
	MailboxAttrUnmarked    MailboxAttr = "\\Unmarked"
)
