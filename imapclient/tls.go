package imapclient

import (
	"crypto/tls"

	"github.com/zhuhaoran/goimapengine"
)

// StartTLS 发送 STARTTLS 命令，并在服务器确认之后把底层连接升级为 TLS。
// 握手本身发生在读取 goroutine 内部、紧邻 STARTTLS 的带标签响应被处理
// 之后、下一次从传输层读取之前，这样就不会有明文字节被误当作 TLS 记录
// 解析，也不会有 TLS 记录被误当作 IMAP 行解析。
func (c *Client) StartTLS(cfg *tls.Config) (imap.Response, error) {
	if c.rawConn == nil {
		return imap.Response{}, &imap.ProtocolError{Reason: "imapclient: STARTTLS requires a net.Conn transport"}
	}
	if cfg == nil {
		cfg = new(tls.Config)
	}

	cmd := newCommand(c.tags.newTag(), "STARTTLS", "", nil, "", c.opts.commandTimeout())
	under := c.rawConn
	cmd.setUpgrade(func() (Transport, error) {
		tlsConn := tls.Client(under, cfg)
		if err := tlsConn.Handshake(); err != nil {
			return nil, err
		}
		return c.opts.wrapTransport(tlsConn), nil
	})
	resp, err := c.submit(cmd, "")
	if err != nil {
		return resp, err
	}
	if err := cmd.upgradeResult(); err != nil {
		return resp, &imap.ProtocolError{Reason: "imapclient: STARTTLS handshake failed: " + err.Error()}
	}

	// 升级之后 CAPABILITY 必须重新询问：缓存的能力集合可能反映了明文
	// 连接上的局限（例如服务器在 STARTTLS 之前隐藏了 AUTH=PLAIN）。
	if _, err := c.Capability(); err != nil {
		return resp, err
	}
	return resp, nil
}
