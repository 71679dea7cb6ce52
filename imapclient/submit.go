package imapclient

import (
	"fmt"
	"strings"

	"github.com/zhuhaoran/goimapengine"
)

// submit 是所有命令方法共用的提交路径，实现设计说明 §4.5 的准入规则：
//
//  1. 若当前状态不允许这条命令，立即以 ProtocolError 失败，不触碰 registry。
//  2. 若这条新命令本身是同步的，原子地等待直到没有同步命令也没有任何
//     异步命令在途、然后装入同步槽位；否则原子地等待直到没有同步命令在途、
//     且它的未加标签响应名下没有异步命令在途，然后装入异步映射。"等待"与
//     "装入"不可分割，不给另一个并发提交者留下插队覆盖登记的空档。
//  3. 把命令写到线上，然后等待其终结（或超时/连接丢失）。
//  4. 终结若是服务器给出的 NO/BAD，转成 *imap.Error 返回，携带解析出的
//     resp-text-code（若有）。
//
// scrub 非空时，写入调用的日志里会用等长的 "*" 替换掉该子串（用于隐藏
// LOGIN/AUTHENTICATE 里的口令等敏感参数），但线上实际发送的字节不受影响。
func (c *Client) submit(cmd *Command, scrub string) (imap.Response, error) {
	spec, ok := imap.LookupCommand(cmd.name)
	if !ok {
		return imap.Response{}, &imap.ProtocolError{Reason: fmt.Sprintf("imapclient: unknown command %q", cmd.name)}
	}
	state := c.GetState()
	if !spec.ValidIn(state) {
		return imap.Response{}, &imap.ProtocolError{Reason: fmt.Sprintf("imapclient: command %s is not valid in state %s", cmd.name, state)}
	}

	isSync := spec.Mode == imap.ExecSync
	if isSync {
		c.registry.admitSync(cmd)
	} else {
		c.registry.admitAsync(cmd.untaggedRespName, cmd)
	}

	release := func() {
		if isSync {
			c.registry.clearSync(cmd)
		} else {
			c.registry.clearAsync(cmd.untaggedRespName, cmd)
		}
	}

	if err := c.writeLine(cmd.String(), scrub); err != nil {
		release()
		cmd.finish(err)
		return imap.Response{}, err
	}

	err := cmd.wait()
	if _, isTimeout := err.(*imap.CommandTimeout); isTimeout {
		release()
		return imap.Response{}, err
	}
	if err != nil {
		return imap.Response{}, err
	}
	resp := cmd.response()
	if resp.Result == imap.ResultNo || resp.Result == imap.ResultBad {
		return resp, statusError(resp.Result, cmd.lastStatusText())
	}
	return resp, nil
}

// statusError 把一条终结为 NO/BAD 的带标签状态行转成 *imap.Error，解析出
// resp-text 里的 [CODE]（若有），例如 "[TRYCREATE] mailbox does not exist"
// 产出 Code == imap.ResponseCodeTryCreate。
func statusError(result imap.Result, text string) error {
	typ := imap.StatusResponseTypeNo
	if result == imap.ResultBad {
		typ = imap.StatusResponseTypeBad
	}
	code, rest := imap.ParseResponseCode([]byte(text))
	return &imap.Error{Type: typ, Code: code, Text: rest}
}

// writeLine 把一行命令文本（自动追加 CRLF）写到传输层，出口处由 writeMu
// 序列化，避免两个 goroutine 并发提交命令时字节在线上交错。
func (c *Client) writeLine(line string, scrub string) error {
	return c.writeRaw([]byte(line+"\r\n"), line, scrub)
}

func (c *Client) writeRaw(data []byte, logLine string, scrub string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if logLine != "" {
		shown := logLine
		if scrub != "" {
			shown = strings.ReplaceAll(logLine, scrub, strings.Repeat("*", len(scrub)))
		}
		c.logf("imapclient: C: %s", shown)
	}
	_, err := c.conn.Write(data)
	return err
}
