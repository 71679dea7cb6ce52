package imapclient

import (
	"encoding/base64"

	"github.com/emersion/go-sasl"
	"github.com/zhuhaoran/goimapengine"
)

// Login 以明文凭据登录。口令在日志里会被替换成等长的星号。
func (c *Client) Login(username, password string) (imap.Response, error) {
	if c.HasCapability(imap.CapLoginDisabled) {
		return imap.Response{}, &imap.ProtocolError{Reason: "LOGIN is disabled by the server, use Authenticate instead"}
	}
	cmd := newCommand(c.tags.newTag(), "LOGIN", "", []string{imap.Quote(username), imap.Quote(password)}, "", c.opts.commandTimeout())
	resp, err := c.submit(cmd, password)
	if err == nil {
		c.setState(imap.ConnStateAuthenticated)
	}
	return resp, err
}

// XOAuth2 用 OAuth2 访问令牌以 SASL XOAUTH2 机制完成认证，在教师代码的
// authenticate.go 基础上针对该机制固化。
func (c *Client) XOAuth2(username, accessToken string) (imap.Response, error) {
	return c.Authenticate(sasl.NewXoauth2Client(username, accessToken))
}

// Authenticate 驱动一条通用的 SASL 质询-响应交互，直到服务器给出带标签的
// 最终结果。这是一条同步命令：AUTHENTICATE 进行期间不允许有任何其他命令
// 在途（设计说明 §4.5）。
func (c *Client) Authenticate(mech sasl.Client) (imap.Response, error) {
	state := c.GetState()
	spec, ok := imap.LookupCommand("AUTHENTICATE")
	if !ok || !spec.ValidIn(state) {
		return imap.Response{}, &imap.ProtocolError{Reason: "AUTHENTICATE is not valid in the current state"}
	}

	name, ir, err := mech.Start()
	if err != nil {
		return imap.Response{}, err
	}

	args := []string{name}
	useSASLIR := ir != nil && c.HasCapability(imap.CapSASLIR)
	if useSASLIR {
		args = append(args, encodeSASL(ir))
		ir = nil
	}

	cmd := newCommand(c.tags.newTag(), "AUTHENTICATE", "", args, "", c.opts.commandTimeout())

	c.registry.admitSync(cmd)

	if err := c.writeLine(cmd.String(), ""); err != nil {
		c.registry.clearSync(cmd)
		cmd.finish(err)
		return imap.Response{}, err
	}

	for {
		select {
		case <-cmd.done:
			c.registry.clearSync(cmd)
			if c.curCmd == cmd {
				c.curCmd = nil
			}
			if err := cmd.wait(); err != nil {
				return imap.Response{}, err
			}
			resp := cmd.response()
			if resp.Result == imap.ResultNo || resp.Result == imap.ResultBad {
				return resp, statusError(resp.Result, cmd.lastStatusText())
			}
			c.setState(imap.ConnStateAuthenticated)
			return resp, nil

		case chalText := <-cmd.continuations():
			// 服务器没有收到内联的初始响应（没有 SASL-IR 支持），它的第一次
			// 延续请求就是在索要这个初始响应；此时延续文本通常为空，不能当成
			// 一次真正的质询交给 mech.Next。
			if ir != nil {
				out := ir
				ir = nil
				if err := c.writeLine(encodeSASL(out), ""); err != nil {
					cmd.finish(err)
				}
				continue
			}
			challenge, decErr := decodeSASL(chalText)
			if decErr != nil {
				c.writeLine("*", "")
				continue
			}
			out, err := mech.Next(challenge)
			if err != nil {
				c.writeLine("*", "")
				continue
			}
			if err := c.writeLine(encodeSASL(out), ""); err != nil {
				cmd.finish(err)
			}
		}
	}
}

func encodeSASL(b []byte) string {
	if len(b) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(b)
}

func decodeSASL(text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(text)
}
