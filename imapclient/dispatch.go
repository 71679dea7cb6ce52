package imapclient

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/zhuhaoran/goimapengine"
)

var (
	taggedRe      = regexp.MustCompile(`^([^ ]+) (OK|NO|BAD) (.*)$`)
	messageDataRe = regexp.MustCompile(`^(\d+) (EXISTS|RECENT|EXPUNGE|FETCH)( (.*))?$`)
	statusTypeRe  = regexp.MustCompile(`^(OK|NO|BAD|PREAUTH|BYE)( (.*))?$`)
	capBracketRe  = regexp.MustCompile(`(?i)\[CAPABILITY([^\]]*)\]`)
)

// extractBracketCapabilities 在一段状态响应文本里查找 "[CAPABILITY ...]"
// 响应码，返回其中以空格分隔的能力令牌。IMAP4rev1 允许服务器把问候或
// 登录响应里的 CAPABILITY 结果内联在方括号里，省去一次额外的往返。
func extractBracketCapabilities(text string) ([]string, bool) {
	m := capBracketRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return strings.Fields(m[1]), true
}

// onLine 与 onLiteralChunk 一起实现 lineSink，供 parser 在读取 goroutine
// 内部调用；这是 Client 状态机唯一的写入点。

func (c *Client) onLine(line []byte, literalSize int) {
	if c.curCmd != nil && c.curCmd.waitData() {
		c.routeToCurrent(line, literalSize)
		return
	}

	switch {
	case len(line) > 0 && line[0] == '+':
		c.handleContinuation(line)
	case bytes.HasPrefix(line, []byte("* ")):
		c.handleUntagged(line[2:], literalSize)
	default:
		c.handleTagged(line)
	}
}

func (c *Client) onLiteralChunk(data []byte) {
	if c.curCmd == nil {
		c.logf("imapclient: dropping %d bytes of unexpected literal data", len(data))
		return
	}
	c.curCmd.appendLiteralData(data)
	if !c.curCmd.waitData() {
		c.curCmd.flush()
		c.curCmd = nil
	}
}

// routeToCurrent 把一行延续数据交给 c.curCmd（已经确定仍需要更多数据的
// 命令），并在它随后被满足时结束路由、刷新积累器。
func (c *Client) routeToCurrent(line []byte, literalSize int) {
	cmd := c.curCmd
	if literalSize > 0 {
		cmd.beginLiteralData(literalSize)
	}
	cmd.appendToResp(line, statusPending)
	if !cmd.waitData() {
		cmd.flush()
		c.curCmd = nil
	}
}

// handleTagged 处理带标签的状态响应："<tag> OK/NO/BAD ..."，这是终结某条
// 命令的信号。
func (c *Client) handleTagged(line []byte) {
	m := taggedRe.FindSubmatch(line)
	if m == nil {
		c.logf("imapclient: ignoring malformed tagged response: %q", line)
		return
	}
	tag, result, text := string(m[1]), string(m[2]), string(m[3])

	cmd, asyncKey, found := c.registry.findByTag(tag)
	if !found {
		c.logf("imapclient: no pending command for tag %q (response: %s %s)", tag, result, text)
		return
	}

	if toks, ok := extractBracketCapabilities(text); ok {
		c.mergeCapabilities(toks)
	}

	if imap.Result(result) == imap.ResultOK && cmd.upgradeFn != nil {
		// 升级必须发生在这里：在这条带标签响应被收掉、读取 goroutine 回去
		// 读下一段字节之前。调用方只能在 cmd.wait() 返回之后才被唤醒，而那
		// 已经在 cmd.close() 之后，所以升级不能拖到那时候才做——否则服务器
		// 紧接着发来的 TLS 记录/DEFLATE 帧会被当成明文 IMAP 行误解析。
		c.performUpgrade(cmd)
	}

	cmd.close(line, imap.Result(result), text)
	if asyncKey != "" {
		c.registry.clearAsync(asyncKey, cmd)
	} else {
		c.registry.clearSync(cmd)
	}
	if c.curCmd == cmd {
		c.curCmd = nil
	}
}

// handleContinuation 处理服务器的 "+ ..." 延续请求：可能是字面量上传的
// 许可，也可能是 AUTHENTICATE 质询，或者 IDLE 被接纳。
func (c *Client) handleContinuation(line []byte) {
	text := strings.TrimSpace(string(bytes.TrimPrefix(line, []byte("+"))))

	if sync := c.registry.getSync(); sync != nil {
		if sync.name == "IDLE" {
			select {
			case sync.idleActivated() <- struct{}{}:
			default:
			}
			return
		}
		select {
		case sync.continuations() <- text:
		default:
			c.logf("imapclient: dropping continuation for %s: consumer not ready", sync.name)
		}
		return
	}
	c.logf("imapclient: unexpected continuation request: %q", text)
}

// handleUntagged 处理未加标签的数据："* <rest>"。
func (c *Client) handleUntagged(rest []byte, literalSize int) {
	text := string(rest)

	if m := messageDataRe.FindStringSubmatch(text); m != nil {
		c.handleMessageData(m[2], text, literalSize)
		return
	}

	if m := statusTypeRe.FindStringSubmatch(text); m != nil {
		c.handleUntaggedStatus(m[1], m[3], rest, literalSize)
		return
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	name := strings.ToUpper(fields[0])

	if name == "CAPABILITY" {
		c.mergeCapabilities(fields[1:])
		return
	}

	if target := c.resolveTarget(name); target != nil {
		if literalSize > 0 {
			target.beginLiteralData(literalSize)
		}
		target.appendToResp(rest, statusPending)
		if target.waitData() {
			c.curCmd = target
		} else {
			// 行已经完整、积累器也不要求更多数据：给 IDLE 的缓冲-刷新积累器
			// 一个把这一条推送对外交付的机会（其余积累器的 flush 是空操作）。
			target.flush()
		}
		return
	}

	c.logf("imapclient: unsolicited untagged data (%s): %q", name, text)
}

func (c *Client) handleMessageData(name, text string, literalSize int) {
	// EXISTS/RECENT/EXPUNGE/FETCH 在没有命令认领时，属于邮箱状态的单方面
	// 通知；resolveTarget 已经把"同步命令在途时它吞下一切"这条规则内置
	// 在里面了，所以 SELECT 期间的 EXISTS、IDLE 期间的任意推送都经同一条
	// 路径被收走。
	target := c.resolveTarget(name)
	if target == nil {
		if h := c.opts.unilateralDataHandler().Mailbox; h != nil {
			h([][]byte{[]byte(text)})
		}
		return
	}
	if literalSize > 0 {
		target.beginLiteralData(literalSize)
	}
	target.appendToResp([]byte(text), statusPending)
	if target.waitData() {
		c.curCmd = target
	} else {
		target.flush()
	}
}

func (c *Client) handleUntaggedStatus(kind, text string, rawRest []byte, literalSize int) {
	switch kind {
	case "BYE":
		c.logf("imapclient: server sent BYE: %s", text)
		if h := c.opts.unilateralDataHandler().BYE; h != nil {
			h(text)
		}
		// 服务器发起的 BYE 之后连接即将关闭；不把它当成某条命令的附带状态
		// 行分发，而是立即让所有挂起的命令失败，就像 aioimaplib 在未经请求
		// 收到 BYE 时把 state 直接推进到 LOGOUT 一样。
		c.mu.Lock()
		if c.closeErr == nil {
			c.closeErr = &imap.TransportLost{Cause: fmt.Errorf("imapclient: server sent unsolicited BYE: %s", text)}
		}
		final := c.closeErr
		c.mu.Unlock()
		c.failAllPending(final)
		return
	case "PREAUTH":
		c.handleGreeting(text, imap.ConnStateAuthenticated)
		return
	case "OK":
		if toks, ok := extractBracketCapabilities(text); ok {
			c.mergeCapabilities(toks)
		}
		if c.GetState() == imap.ConnStateConnected {
			c.handleGreeting(text, imap.ConnStateNotAuthenticated)
			return
		}
	}

	// 其余情况下，这条状态行是跟在某条命令之后的非终结性补充信息
	// （例如 EXPUNGE 之前的 "* OK [...]"），交给当前挂起的同步命令，
	// 若无则按单方面邮箱通知处理。
	if sync := c.registry.getSync(); sync != nil {
		if literalSize > 0 {
			sync.beginLiteralData(literalSize)
		}
		sync.appendToResp(rawRest, statusPending)
		if sync.waitData() {
			c.curCmd = sync
		} else {
			sync.flush()
		}
		return
	}
	if h := c.opts.unilateralDataHandler().Mailbox; h != nil {
		h([][]byte{rawRest})
	}
}

// handleGreeting 处理连接问候（"* OK ..." 或 "* PREAUTH ..."），把状态从
// Connected 推进到 next，并顺带提取问候行内联的 CAPABILITY（如果有）。
func (c *Client) handleGreeting(text string, next imap.ConnState) {
	if toks, ok := extractBracketCapabilities(text); ok {
		c.setCapabilities(toks)
	}
	c.setState(next)
}

// resolveTarget 决定一条带名字的未加标签数据该交给谁。一条同步命令在途时
// 独占了整条流水线（没有任何异步命令能与它同时挂起），服务器在它完成之前
// 发来的任何未加标签数据都算作它的响应内容，不按名字筛选——SELECT 期间的
// "* n EXISTS"/"* n RECENT"、IDLE 期间任意的邮箱状态推送都是这样被收走的。
// 只有在没有同步命令在途时，才按未加标签响应名去异步映射里找对应命令。
func (c *Client) resolveTarget(name string) *Command {
	if sync := c.registry.getSync(); sync != nil {
		return sync
	}
	return c.registry.getAsync(name)
}
