package imapclient

import (
	"strings"

	"github.com/zhuhaoran/goimapengine"
)

// Capability 查询并缓存服务器支持的能力集合。
func (c *Client) Capability() (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "CAPABILITY", "", nil, "", c.opts.commandTimeout())
	resp, err := c.submit(cmd, "")
	if err != nil {
		return resp, err
	}
	for _, line := range resp.Lines {
		text := string(line)
		if fields := strings.Fields(text); len(fields) > 0 && strings.EqualFold(fields[0], "CAPABILITY") {
			c.mergeCapabilities(fields[1:])
		}
	}
	return resp, nil
}

// Noop 发送 NOOP：除了让服务器有机会推送未加标签通知之外没有其他效果，
// 也用作保活。
func (c *Client) Noop() (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "NOOP", "", nil, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Check 请求服务器执行一次实现相关的检查点（RFC 3501 第 6.4.1 节），语义上
// 类似 NOOP，但只在 Selected 状态下合法。
func (c *Client) Check() (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "CHECK", "", nil, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// ID 发送 RFC 2971 的 ID 命令，交换客户端/服务器的实现标识字段。
func (c *Client) ID(fields imap.IDFields) (imap.Response, error) {
	encoded, err := imap.EncodeID(fields)
	if err != nil {
		return imap.Response{}, err
	}
	cmd := newCommand(c.tags.newTag(), "ID", "", []string{encoded}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Enable 为本连接启用一组扩展（RFC 5161），仅影响客户端如何解释后续响应，
// 不改变服务器支持哪些能力。
func (c *Client) Enable(caps ...imap.Cap) (imap.Response, error) {
	if !c.HasCapability(imap.CapEnable) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise ENABLE"}
	}
	names := make([]string, len(caps))
	for i, cp := range caps {
		names[i] = string(cp)
	}
	cmd := newCommand(c.tags.newTag(), "ENABLE", "", names, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// Logout 发送 LOGOUT 并等待其结束，随后无论结果如何连接都进入 Logout 状态；
// 调用方仍应随后调用 Disconnect 释放底层传输层。
func (c *Client) Logout() (imap.Response, error) {
	cmd := newCommand(c.tags.newTag(), "LOGOUT", "", nil, "", c.opts.commandTimeout())
	resp, err := c.submit(cmd, "")
	c.setState(imap.ConnStateLogout)
	return resp, err
}
