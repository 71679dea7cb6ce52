package imapclient

import (
	"fmt"
	"strings"

	"github.com/zhuhaoran/goimapengine"
)

// Select 用 SELECT 打开邮箱 mailbox 进行读写，连接进入 Selected 状态。
func (c *Client) Select(mailbox string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "SELECT", "", []string{imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	resp, err := c.submit(cmd, "")
	if err == nil {
		c.setState(imap.ConnStateSelected)
	}
	return resp, err
}

// Examine 与 Select 相同，但以只读方式打开邮箱。
func (c *Client) Examine(mailbox string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "EXAMINE", "", []string{imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	resp, err := c.submit(cmd, "")
	if err == nil {
		c.setState(imap.ConnStateSelected)
	}
	return resp, err
}

// Close 用 CLOSE 关闭当前选中的邮箱（隐式 EXPUNGE 所有 \Deleted 消息），
// 连接回到 Authenticated 状态。它不会动底层传输层——要彻底断开连接，
// 用 Disconnect。
func (c *Client) Close() (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "CLOSE", "", nil, "", c.opts.commandTimeout())
	resp, err := c.submit(cmd, "")
	if err == nil {
		c.setState(imap.ConnStateAuthenticated)
	}
	return resp, err
}

func (c *Client) Create(mailbox string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "CREATE", "", []string{imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) Delete(mailbox string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "DELETE", "", []string{imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) Rename(mailbox, newName string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "RENAME", "", []string{imap.Quote(mailbox), imap.Quote(newName)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) Subscribe(mailbox string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "SUBSCRIBE", "", []string{imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) Unsubscribe(mailbox string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "UNSUBSCRIBE", "", []string{imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// List 列出与 reference/pattern 匹配的邮箱。
func (c *Client) List(reference, pattern string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "LIST", "", []string{imap.Quote(reference), imap.Quote(pattern)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Lsub 列出订阅邮箱，语法与 List 相同。
func (c *Client) Lsub(reference, pattern string) (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "LSUB", "", []string{imap.Quote(reference), imap.Quote(pattern)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// StatusItem 是 STATUS 命令可查询的邮箱属性名（RFC 3501 第 6.3.10 节）。
type StatusItem string

const (
	StatusItemMessages      StatusItem = "MESSAGES"
	StatusItemRecent        StatusItem = "RECENT"
	StatusItemUIDNext       StatusItem = "UIDNEXT"
	StatusItemUIDValidity   StatusItem = "UIDVALIDITY"
	StatusItemUnseen        StatusItem = "UNSEEN"
	StatusItemHighestModSeq StatusItem = "HIGHESTMODSEQ"
)

// Status 查询 mailbox 的若干元数据项，而不必先 SELECT 它。
func (c *Client) Status(mailbox string, items ...StatusItem) (imap.Response, error) {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = string(it)
	}
	arg := fmt.Sprintf("(%s)", strings.Join(names, " "))
	cmd := newCommand(c.tags.newTag(), "STATUS", "", []string{imap.Quote(mailbox), arg}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Namespace 查询服务器对个人/其他用户/共享命名空间的划分（RFC 2342）。
func (c *Client) Namespace() (imap.Response, error) {
	if !c.HasCapability(imap.CapNamespace) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise NAMESPACE"}
	}
	cmd := newCommand(c.tags.newTag(), "NAMESPACE", "", nil, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}
