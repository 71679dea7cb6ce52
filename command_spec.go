package imap

// ExecMode 描述一条命令可否与其他命令并发执行。
type ExecMode int

const (
	// ExecSync 的命令独占流水线，直到它终结为止；参见 Sync command（术语表）。
	ExecSync ExecMode = iota
	// ExecAsync 的命令可以和其他未加标签响应名不同的异步命令并发运行。
	ExecAsync
)

// CommandSpec 是命令名到其静态属性的映射表条目：在哪些连接状态下合法、
// 以同步还是异步方式执行，以及（若与命令名不同）其未加标签响应名。
//
// 这张表是命令可执行性的唯一真相来源（数据模型 §3）：不在表中的命令名
// 永远无法被执行。
type CommandSpec struct {
	Name             string
	ValidStates      []ConnState
	Mode             ExecMode
	UntaggedRespName string // 空字符串表示与 Name 相同
}

// RespName 返回该命令用于匹配未加标签响应的名字。
func (s CommandSpec) RespName() string {
	if s.UntaggedRespName != "" {
		return s.UntaggedRespName
	}
	return s.Name
}

// ValidIn 判断该命令是否可以在给定连接状态下被提交。
func (s CommandSpec) ValidIn(state ConnState) bool {
	for _, st := range s.ValidStates {
		if st == state {
			return true
		}
	}
	return false
}

func states(ss ...ConnState) []ConnState { return ss }

var (
	authOrSelected     = states(ConnStateAuthenticated, ConnStateSelected)
	anyAuthenticated    = states(ConnStateNotAuthenticated, ConnStateAuthenticated, ConnStateSelected)
	allConnStates       = states(ConnStateNotAuthenticated, ConnStateAuthenticated, ConnStateSelected, ConnStateLogout)
)

// Commands 是命令规格的静态表，在进程初始化时一次性构建，此后永不修改。
// 直接照搬 spec.md §6 给出的命令表；untagged_resp_name 的覆写
// （STORE -> FETCH，GETQUOTAROOT -> QUOTA）与原始实现一致。
var Commands = map[string]CommandSpec{
	"APPEND":       {"APPEND", authOrSelected, ExecSync, ""},
	"AUTHENTICATE": {"AUTHENTICATE", states(ConnStateNotAuthenticated), ExecSync, ""},
	"CAPABILITY":   {"CAPABILITY", anyAuthenticated, ExecAsync, ""},
	"CHECK":        {"CHECK", states(ConnStateSelected), ExecAsync, ""},
	"CLOSE":        {"CLOSE", states(ConnStateSelected), ExecSync, ""},
	"COMPRESS":     {"COMPRESS", states(ConnStateAuthenticated), ExecSync, ""},
	"COPY":         {"COPY", states(ConnStateSelected), ExecAsync, ""},
	"CREATE":       {"CREATE", authOrSelected, ExecAsync, ""},
	"DELETE":       {"DELETE", authOrSelected, ExecAsync, ""},
	"DELETEACL":    {"DELETEACL", authOrSelected, ExecAsync, ""},
	"ENABLE":       {"ENABLE", states(ConnStateAuthenticated), ExecSync, ""},
	"EXAMINE":      {"EXAMINE", authOrSelected, ExecSync, ""},
	"EXPUNGE":      {"EXPUNGE", states(ConnStateSelected), ExecAsync, ""},
	"FETCH":        {"FETCH", states(ConnStateSelected), ExecAsync, ""},
	"GETACL":       {"GETACL", authOrSelected, ExecAsync, ""},
	"GETQUOTA":     {"GETQUOTA", authOrSelected, ExecAsync, ""},
	"GETQUOTAROOT": {"GETQUOTAROOT", authOrSelected, ExecAsync, "QUOTA"},
	"ID":           {"ID", allConnStates, ExecAsync, ""},
	"IDLE":         {"IDLE", states(ConnStateSelected), ExecSync, ""},
	"LIST":         {"LIST", authOrSelected, ExecAsync, ""},
	"LOGIN":        {"LOGIN", states(ConnStateNotAuthenticated), ExecSync, ""},
	"LOGOUT":       {"LOGOUT", allConnStates, ExecSync, ""},
	"LSUB":         {"LSUB", authOrSelected, ExecAsync, ""},
	"MYRIGHTS":     {"MYRIGHTS", authOrSelected, ExecAsync, ""},
	"MOVE":         {"MOVE", states(ConnStateSelected), ExecSync, ""},
	"NAMESPACE":    {"NAMESPACE", authOrSelected, ExecAsync, ""},
	"NOOP":         {"NOOP", states(ConnStateNotAuthenticated, ConnStateAuthenticated, ConnStateSelected), ExecAsync, ""},
	"RENAME":       {"RENAME", authOrSelected, ExecAsync, ""},
	"SEARCH":       {"SEARCH", states(ConnStateSelected), ExecAsync, ""},
	"SELECT":       {"SELECT", authOrSelected, ExecSync, ""},
	"SETACL":       {"SETACL", authOrSelected, ExecSync, ""},
	"SETQUOTA":     {"SETQUOTA", authOrSelected, ExecSync, ""},
	"SORT":         {"SORT", states(ConnStateSelected), ExecAsync, ""},
	"STARTTLS":     {"STARTTLS", states(ConnStateNotAuthenticated), ExecSync, ""},
	"STATUS":       {"STATUS", authOrSelected, ExecAsync, ""},
	"STORE":        {"STORE", states(ConnStateSelected), ExecAsync, "FETCH"},
	"SUBSCRIBE":    {"SUBSCRIBE", authOrSelected, ExecSync, ""},
	"THREAD":       {"THREAD", states(ConnStateSelected), ExecAsync, ""},
	"UNSUBSCRIBE":  {"UNSUBSCRIBE", authOrSelected, ExecSync, ""},
}

// LookupCommand 返回给定命令名（已大写）的规格。不在表中的命令名永远无法执行。
func LookupCommand(name string) (CommandSpec, bool) {
	spec, ok := Commands[name]
	return spec, ok
}
