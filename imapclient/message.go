package imapclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/zhuhaoran/goimapengine"
)

// Search 用给定的 IMAP 搜索条件字符串（已经是线上语法，例如
// `UNSEEN SINCE 1-Jan-2024`）执行 SEARCH。
func (c *Client) Search(criteria string) (imap.Response, error) {
	return c.search("SEARCH", "", criteria)
}

// UIDSearch 与 Search 相同，但以 UID 而非消息序号返回结果。
func (c *Client) UIDSearch(criteria string) (imap.Response, error) {
	return c.search("SEARCH", "UID", criteria)
}

func (c *Client) search(name, prefix, criteria string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), name, prefix, []string{criteria}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Fetch 为 seqSet 标识的消息取回 items 描述的数据项（例如
// "(FLAGS BODY[HEADER])"）。
func (c *Client) Fetch(seqSet imap.NumSet, items string) (imap.Response, error) {
	return c.fetch(seqSet, items, "")
}

// UIDFetch 与 Fetch 相同，但 seqSet 被解释为 UID 集合。
func (c *Client) UIDFetch(uidSet imap.NumSet, items string) (imap.Response, error) {
	return c.fetch(uidSet, items, "UID")
}

func (c *Client) fetch(set imap.NumSet, items, prefix string) (imap.Response, error) {
	spec, ok := imap.LookupCommand("FETCH")
	if !ok || !spec.ValidIn(c.GetState()) {
		return imap.Response{}, &imap.ProtocolError{Reason: "FETCH is not valid in the current state"}
	}
	cmd := newFetchCommand(c.tags.newTag(), prefix, []string{set.String(), items}, c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Store 依据 op（"+FLAGS"、"-FLAGS" 或 "FLAGS"，可附加 ".SILENT"）修改
// seqSet 标识的消息的标志；未加标签响应以 FETCH 形式到达。
func (c *Client) Store(seqSet imap.NumSet, op string, flags []imap.Flag) (imap.Response, error) {
	return c.store(seqSet, op, flags, "")
}

// UIDStore 与 Store 相同，但 seqSet 被解释为 UID 集合。
func (c *Client) UIDStore(uidSet imap.NumSet, op string, flags []imap.Flag) (imap.Response, error) {
	return c.store(uidSet, op, flags, "UID")
}

func (c *Client) store(set imap.NumSet, op string, flags []imap.Flag, prefix string) (imap.Response, error) {
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = string(f)
	}
	arg := fmt.Sprintf("(%s)", strings.Join(names, " "))
	cmd := newFetchCommand(c.tags.newTag(), prefix, []string{set.String(), op, arg}, c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Copy 把 seqSet 标识的消息复制到 mailbox。
func (c *Client) Copy(seqSet imap.NumSet, mailbox string) (imap.Response, error) {
	return c.copy(seqSet, mailbox, "")
}

// UIDCopy 与 Copy 相同，但 seqSet 被解释为 UID 集合。
func (c *Client) UIDCopy(uidSet imap.NumSet, mailbox string) (imap.Response, error) {
	return c.copy(uidSet, mailbox, "UID")
}

func (c *Client) copy(set imap.NumSet, mailbox, prefix string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "COPY", prefix, []string{set.String(), imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Move 把 seqSet 标识的消息移动到 mailbox（RFC 6851），要求服务器公告 MOVE。
func (c *Client) Move(seqSet imap.NumSet, mailbox string) (imap.Response, error) {
	return c.move(seqSet, mailbox, "")
}

// UIDMove 与 Move 相同，但 seqSet 被解释为 UID 集合。
func (c *Client) UIDMove(uidSet imap.NumSet, mailbox string) (imap.Response, error) {
	return c.move(uidSet, mailbox, "UID")
}

func (c *Client) move(set imap.NumSet, mailbox, prefix string) (imap.Response, error) {
	if !c.HasCapability(imap.CapMove) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise MOVE"}
	}
	cmd := newCommand(c.tags.newTag(), "MOVE", prefix, []string{set.String(), imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Expunge 永久删除当前邮箱里标有 \Deleted 的消息。
func (c *Client) Expunge() (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "EXPUNGE", "", nil, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// UIDExpunge 依据 RFC 4315（UIDPLUS）只清除 uidSet 范围内的已删除消息；
// 若服务器未公告 UIDPLUS 则拒绝执行。
func (c *Client) UIDExpunge(uidSet imap.UIDSet) (imap.Response, error) {
	if !c.HasCapability(imap.CapUIDPlus) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise UIDPLUS, UID EXPUNGE is unavailable"}
	}
	cmd := newCommand(c.tags.newTag(), "EXPUNGE", "UID", []string{uidSet.String()}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// uidSubcommands 是 UID 元命令认识的子命令：各自等价于不带 UID 前缀的同名
// 命令，外加 prefix="UID"。SEARCH 不在其中——它经由单独的 UIDSearch 暴露。
var uidSubcommands = map[string]bool{
	"FETCH":   true,
	"STORE":   true,
	"COPY":    true,
	"MOVE":    true,
	"EXPUNGE": true,
}

// UID 是 UID 元命令的通用入口：sub 选择底层动词，args 是它的线上参数，
// 已经是 IMAP 语法（例如 UIDFetch/UIDStore 等具名方法内部构造的那种）。
// 具名方法对常见用法更方便、更难用错，这个入口主要是让"未知子命令"有
// 地方落地：遇到不认识的 sub 直接以 ProtocolError 拒绝，不碰 registry，
// 不向线上写一个字节。
func (c *Client) UID(sub string, args ...string) (imap.Response, error) {
	sub = strings.ToUpper(sub)
	if !uidSubcommands[sub] {
		return imap.Response{}, &imap.ProtocolError{Reason: fmt.Sprintf("imapclient: unknown UID subcommand %q", sub)}
	}
	if sub == "EXPUNGE" && !c.HasCapability(imap.CapUIDPlus) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise UIDPLUS, UID EXPUNGE is unavailable"}
	}
	if sub == "MOVE" && !c.HasCapability(imap.CapMove) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise MOVE"}
	}
	var cmd *Command
	if sub == "FETCH" || sub == "STORE" {
		cmd = newFetchCommand(c.tags.newTag(), "UID", args, c.opts.commandTimeout())
	} else {
		cmd = newCommand(c.tags.newTag(), sub, "UID", args, "", c.opts.commandTimeout())
	}
	return c.submit(cmd, "")
}

// Append 把 message 作为新消息追加进 mailbox，可选地带上初始标志与内部日期。
// 这是唯一需要客户端主动上传字面量的命令：Append 等待服务器的延续许可，
// 写出 message 的原始字节，然后等待带标签的最终结果。
func (c *Client) Append(mailbox string, message []byte, flags []imap.Flag, when time.Time) (imap.Response, error) {
	args := []string{imap.Quote(mailbox)}
	if len(flags) > 0 {
		names := make([]string, len(flags))
		for i, f := range flags {
			names[i] = string(f)
		}
		args = append(args, fmt.Sprintf("(%s)", strings.Join(names, " ")))
	}
	if !when.IsZero() {
		date, err := imap.FormatInternalDate(when)
		if err != nil {
			return imap.Response{}, err
		}
		args = append(args, date)
	}
	args = append(args, fmt.Sprintf("{%d}", len(message)))

	cmd := newCommand(c.tags.newTag(), "APPEND", "", args, "", c.opts.commandTimeout())

	c.registry.admitSync(cmd)

	if err := c.writeLine(cmd.String(), ""); err != nil {
		c.registry.clearSync(cmd)
		cmd.finish(err)
		return imap.Response{}, err
	}

	select {
	case <-cmd.continuations():
		if err := c.writeRaw(append(message, '\r', '\n'), "", ""); err != nil {
			c.registry.clearSync(cmd)
			cmd.finish(err)
			return imap.Response{}, err
		}
	case <-cmd.done:
		// 服务器在看到字面量大小之前就以 NO/BAD 拒绝了命令。
	case <-c.closed:
		c.registry.clearSync(cmd)
		return imap.Response{}, c.closeErr
	}

	err := cmd.wait()
	c.registry.clearSync(cmd)
	if c.curCmd == cmd {
		c.curCmd = nil
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
