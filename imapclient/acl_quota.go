package imapclient

import "github.com/zhuhaoran/goimapengine"

// 以下方法是 ACL（RFC 4314）与 QUOTA（RFC 2087）的便捷包装；均以各自的
// CAPABILITY 令牌门控，未公告时直接拒绝而不发起往返。

func (c *Client) GetACL(mailbox string) (imap.Response, error) {
	if !c.HasCapability(imap.CapACL) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise ACL"}
	}
	cmd := newCommand(c.tags.newTag(), "GETACL", "", []string{imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) SetACL(mailbox, identifier, rights string) (imap.Response, error) {
	if !c.HasCapability(imap.CapACL) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise ACL"}
	}
	cmd := newCommand(c.tags.newTag(), "SETACL", "", []string{imap.Quote(mailbox), imap.Quote(identifier), rights}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) DeleteACL(mailbox, identifier string) (imap.Response, error) {
	if !c.HasCapability(imap.CapACL) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise ACL"}
	}
	cmd := newCommand(c.tags.newTag(), "DELETEACL", "", []string{imap.Quote(mailbox), imap.Quote(identifier)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) MyRights(mailbox string) (imap.Response, error) {
	if !c.HasCapability(imap.CapACL) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise ACL"}
	}
	cmd := newCommand(c.tags.newTag(), "MYRIGHTS", "", []string{imap.Quote(mailbox)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) GetQuota(root string) (imap.Response, error) {
	if !c.HasCapability(imap.CapQuota) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise QUOTA"}
	}
	cmd := newCommand(c.tags.newTag(), "GETQUOTA", "", []string{imap.Quote(root)}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

// GetQuotaRoot 查询 mailbox 所属的配额根；其未加标签响应以 QUOTA 形式
// 到达（命令表里的覆写），而不是 QUOTAROOT。
func (c *Client) GetQuotaRoot(mailbox string) (imap.Response, error) {
	if !c.HasCapability(imap.CapQuota) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise QUOTA"}
	}
	cmd := newCommand(c.tags.newTag(), "GETQUOTAROOT", "", []string{imap.Quote(mailbox)}, "QUOTA", c.opts.commandTimeout())
	return c.submit(cmd, "")
}

func (c *Client) SetQuota(root string, limits string) (imap.Response, error) {
	if !c.HasCapability(imap.CapQuota) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise QUOTA"}
	}
	cmd := newCommand(c.tags.newTag(), "SETQUOTA", "", []string{imap.Quote(root), limits}, "", c.opts.commandTimeout())
	return c.submit(cmd, "")
}
