package imapclient

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/zhuhaoran/goimapengine"
)

// cmdStatus 是命令内部的瞬时/终态状态字符串，对应数据模型里的
// {"Init","Pending","OK","NO","BAD","KO"}。只有后四个会被终结并对外暴露为
// imap.Result；"Init"/"Pending" 纯粹是引擎内部的记账状态。
type cmdStatus string

const (
	statusInit    cmdStatus = "Init"
	statusPending cmdStatus = "Pending"
)

// accumulator 是命令响应的可插拔积累策略（设计说明 §9）：三个具体实现
// ——按行、FETCH 括号平衡、IDLE 缓冲——共享同一套 Command 外壳。
type accumulator interface {
	// appendToResp 记录一行响应（行尾 CRLF 已被剥离）。status 为
	// statusPending 表示这是一条尚未终结的未加标签行；任何其他取值表示
	// 这是终结该命令的带标签状态行。
	appendToResp(c *Command, line []byte, status cmdStatus)
	// wantsMoreData 在该积累器认为当前未加标签响应还不完整、解析器应继续
	// 把后续行喂给同一个命令时返回 true。
	wantsMoreData(c *Command) bool
	// flush 在分发路径把一条未加标签响应完整交给命令、且命令不再等待更多
	// 数据之后被调用；因此 IDLE 期间每条推送各自成为一批，同一次读取里到达
	// 的多条推送不会合并成一批。只有 IDLE 积累器对此有反应。
	flush(c *Command)
}

// Command 是一条在途命令：它的标签、参数、累积的响应、终态结果、一次性
// 完成信号，以及每条命令各自的截止计时器。除了 done 信号发布时刻以外，
// Command 只应当被读取它的那个连接的调度路径以及其自身的截止计时器触碰；
// mu 序列化这两者。
type Command struct {
	tag              string
	name             string
	prefix           string // 例如 "UID"；空字符串表示无前缀
	args             []string
	untaggedRespName string

	mu                   sync.Mutex
	expectedLiteralSize  int
	literalBuf           []byte
	lines                [][]byte
	status               cmdStatus
	statusText           string
	err                  error
	timer                *time.Timer
	timeout              time.Duration
	done                 chan struct{}
	doneClosed           bool

	acc accumulator

	idleSignal chan struct{} // IDLE 被服务器接纳时收到一次信号
	contCh     chan string   // AUTHENTICATE 等命令收到的延续质询文本

	// upgradeFn 非 nil 时，表示这条命令（STARTTLS/COMPRESS）成功之后需要
	// 原地替换底层传输层；readLoop 在 handleTagged 里看到带标签的 OK 响应
	// 后、把它 close 之前同步调用，结果记在 upgradeErr 里供调用方在 wait()
	// 返回之后取用。
	upgradeFn  func() (Transport, error)
	upgradeErr error
}

// setUpgrade 在提交命令之前登记升级函数；只应由尚未 submit 的命令调用。
func (c *Command) setUpgrade(fn func() (Transport, error)) {
	c.upgradeFn = fn
}

// upgradeResult 返回升级尝试的错误（若有）。只应在命令终结之后调用。
func (c *Command) upgradeResult() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upgradeErr
}

func newCommandBase(tag, name, prefix string, args []string, untaggedRespName string, timeout time.Duration, acc accumulator) *Command {
	if untaggedRespName == "" {
		untaggedRespName = name
	}
	c := &Command{
		tag:              tag,
		name:             name,
		prefix:           prefix,
		args:             args,
		untaggedRespName: untaggedRespName,
		status:           statusInit,
		timeout:          timeout,
		done:             make(chan struct{}),
		acc:              acc,
		idleSignal:       make(chan struct{}, 1),
		contCh:           make(chan string, 1),
	}
	c.setTimerLocked()
	return c
}

// newCommand 构造一条使用默认按行积累策略的命令。
func newCommand(tag, name, prefix string, args []string, untaggedRespName string, timeout time.Duration) *Command {
	return newCommandBase(tag, name, prefix, args, untaggedRespName, timeout, &lineAccumulator{})
}

// newFetchCommand 构造一条 FETCH（或以 FETCH 为未加标签响应名的 STORE）命令，
// 使用括号平衡积累策略，参见 §4.2。
func newFetchCommand(tag, prefix string, args []string, timeout time.Duration) *Command {
	return newCommandBase(tag, "FETCH", prefix, args, "", timeout, &fetchAccumulator{})
}

// newIdleCommand 构造一条 IDLE 命令，使用缓冲-刷新到队列的积累策略，参见 §4.3。
func newIdleCommand(tag string, queue *idleQueue) *Command {
	return newCommandBase(tag, "IDLE", "", nil, "", 0, &idleAccumulator{queue: queue})
}

// String 返回命令的线上表示："<tag> [<prefix> ]<NAME>[ <args…>]"。
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.tag)
	sb.WriteByte(' ')
	if c.prefix != "" {
		sb.WriteString(c.prefix)
		sb.WriteByte(' ')
	}
	sb.WriteString(c.name)
	for _, a := range c.args {
		sb.WriteByte(' ')
		sb.WriteString(a)
	}
	return sb.String()
}

// response 把命令当前积累的状态快照为一个 imap.Response。只应在命令终结
// （done 已关闭）之后调用。
func (c *Command) response() imap.Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	return imap.Response{Result: imap.Result(c.status), Lines: c.lines}
}

// waitLiteralData 判断命令是否仍在等待一个尚未读满的 {n} 字面量。
func (c *Command) waitLiteralData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waitLiteralDataLocked()
}

func (c *Command) waitLiteralDataLocked() bool {
	return c.expectedLiteralSize != 0 && len(c.literalBuf) != c.expectedLiteralSize
}

// waitData 判断解析器是否应当继续把后续行交给这条命令，而不是回到行模式
// 独立分发。字面量未读满，或积累器自身认为未完整（FETCH 括号不平衡）都
// 会导致返回 true。
func (c *Command) waitData() bool {
	if c.waitLiteralData() {
		return true
	}
	return c.acc.wantsMoreData(c)
}

// beginLiteralData 记录一个刚被解析器识别到的 {n} 字面量的期望长度。
func (c *Command) beginLiteralData(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expectedLiteralSize = size
	c.literalBuf = c.literalBuf[:0]
}

// appendLiteralData 把 data 中至多 expectedLiteralSize-len(literalBuf) 个字节
// 追加进字面量缓冲，返回 data 中未被消费的剩余部分。字面量一旦读满，就把
// 它作为一整行追加进响应并退出字面量模式。
func (c *Command) appendLiteralData(data []byte) (rest []byte) {
	c.mu.Lock()
	need := c.expectedLiteralSize - len(c.literalBuf)
	if need > len(data) {
		need = len(data)
	}
	if need > 0 {
		c.literalBuf = append(c.literalBuf, data[:need]...)
	}
	rest = data[need:]
	full := !c.waitLiteralDataLocked()
	var literal []byte
	if full {
		literal = append([]byte(nil), c.literalBuf...)
		c.expectedLiteralSize = 0
		c.literalBuf = nil
	}
	c.mu.Unlock()

	if full {
		c.acc.appendToResp(c, literal, statusPending)
	}
	c.resetTimer()
	return rest
}

// appendToResp 记录一行已完整到达的响应文本；status 为非 Pending 时意味着
// 这是终结该命令的带标签状态行。
func (c *Command) appendToResp(line []byte, status cmdStatus) {
	c.acc.appendToResp(c, line, status)
	c.resetTimer()
}

// flush 让积累器把当前批次里尚未对外可见的数据（仅 IDLE 相关）推出去。
func (c *Command) flush() {
	c.acc.flush(c)
}

// close 把命令标记为终结：记下最后一行文本与终态结果、resp-text（带标签
// 状态行里结果词之后的部分，供 submit 在 NO/BAD 时构造 imap.Error），取消
// 截止计时器，并恰好一次地触发完成信号。
func (c *Command) close(line []byte, result imap.Result, text string) {
	c.acc.appendToResp(c, line, cmdStatus(result))
	c.mu.Lock()
	c.statusText = text
	c.mu.Unlock()
	c.finish(nil)
}

// lastStatusText 返回带标签状态行中结果词之后的 resp-text 部分。
func (c *Command) lastStatusText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusText
}

// finish 取消计时器并恰好一次地关闭完成信号；err 非 nil 时会被 wait 返回，
// 命令结果记为 KO。
func (c *Command) finish(err error) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	already := c.doneClosed
	if !already {
		c.err = err
		if err != nil {
			c.status = cmdStatus(imap.ResultKO)
		}
		c.doneClosed = true
	}
	done := c.done
	c.mu.Unlock()
	if !already {
		close(done)
	}
}

// wait 阻塞直至命令终结，返回其携带的本地错误（超时、连接丢失），若有的话。
func (c *Command) wait() error {
	<-c.done
	c.mu.Lock()
	err := c.err
	c.mu.Unlock()
	return err
}

// idleActivated 返回 IDLE 被服务器以 "+ idling" 接纳时会收到一次信号的通道。
func (c *Command) idleActivated() chan struct{} {
	return c.idleSignal
}

// continuations 返回延续质询文本到达时会被送入的通道，供 AUTHENTICATE 等
// 需要多轮交互的命令的执行者读取。
func (c *Command) continuations() chan string {
	return c.contCh
}

func (c *Command) setTimerLocked() {
	if c.timeout <= 0 {
		return
	}
	tag, name := c.tag, c.name
	c.timer = time.AfterFunc(c.timeout, func() {
		c.finish(&imap.CommandTimeout{Tag: tag, Name: name})
	})
}

func (c *Command) resetTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timeout <= 0 {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.setTimerLocked()
}

// --- 默认按行积累器 ---

type lineAccumulator struct{}

func (*lineAccumulator) appendToResp(c *Command, line []byte, status cmdStatus) {
	c.mu.Lock()
	c.status = status
	c.lines = append(c.lines, line)
	c.mu.Unlock()
}

func (*lineAccumulator) wantsMoreData(*Command) bool { return false }
func (*lineAccumulator) flush(*Command)              {}

// --- FETCH 括号平衡积累器，参见 §4.2 ---

var fetchMessageDataRe = regexp.MustCompile(`^[0-9]+ FETCH \(`)

type fetchAccumulator struct{}

func (*fetchAccumulator) appendToResp(c *Command, line []byte, status cmdStatus) {
	(&lineAccumulator{}).appendToResp(c, line, status)
}

func (*fetchAccumulator) flush(*Command) {}

func (*fetchAccumulator) wantsMoreData(c *Command) bool {
	c.mu.Lock()
	lines := c.lines
	c.mu.Unlock()

	lastFetchIndex := 0
	for i, line := range lines {
		if fetchMessageDataRe.Match(line) {
			lastFetchIndex = i
		}
	}
	return !matchedParenthesis(bytes.Join(lines[lastFetchIndex:], nil))
}

func matchedParenthesis(b []byte) bool {
	return bytes.Count(b, []byte("(")) == bytes.Count(b, []byte(")"))
}

// --- IDLE 缓冲积累器，参见 §4.3 ---

type idleAccumulator struct {
	queue *idleQueue
	buf   [][]byte
}

func (a *idleAccumulator) appendToResp(c *Command, line []byte, status cmdStatus) {
	if status != statusPending {
		(&lineAccumulator{}).appendToResp(c, line, status)
		return
	}
	a.buf = append(a.buf, line)
}

func (a *idleAccumulator) wantsMoreData(*Command) bool { return false }

func (a *idleAccumulator) flush(*Command) {
	if len(a.buf) == 0 {
		return
	}
	snapshot := make([][]byte, len(a.buf))
	copy(snapshot, a.buf)
	a.queue.push(snapshot)
	a.buf = a.buf[:0]
}
