package imap

import "fmt"

// ProtocolAbort 表示服务器发送了结构上不可能出现的内容（未知标签、错误的问候、
// 标签冲突……）。这是不可恢复的：连接被视为已失效，调用方应当断开并重连。
// imapclient 目前不构造这一类型：未知标签的带标签响应只被记录日志并丢弃；
// 既非 OK 也非 PREAUTH 的问候不会推进状态，Connect 随后以超时返回。
type ProtocolAbort struct {
	Reason string
}

func (e *ProtocolAbort) Error() string { return "imap: protocol abort: " + e.Reason }

// ProtocolError 是调用前就能判定的前置条件违反（例如被能力门控的命令在
// 缺少相应能力时被调用、命令在当前状态下不合法）。服务器返回的 NO/BAD
// 响应不用它表示，而是以 *Error 返回。
// 这是调用方级别可恢复的错误：连接本身依然可用。
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "imap: " + e.Reason }

// CommandTimeout 在命令的截止计时器到期时返回：命令槽位被释放，记录为 KO。
// 连接可能仍然可用，但引擎不会自动尝试重新同步。
type CommandTimeout struct {
	Tag  string
	Name string
}

func (e *CommandTimeout) Error() string {
	return fmt.Sprintf("imap: command %s %s timed out", e.Tag, e.Name)
}

// TransportLost 通过连接丢失回调传播：所有挂起命令都应被判定失败。
type TransportLost struct {
	Cause error
}

func (e *TransportLost) Error() string {
	if e.Cause == nil {
		return "imap: transport lost"
	}
	return "imap: transport lost: " + e.Cause.Error()
}

func (e *TransportLost) Unwrap() error { return e.Cause }
