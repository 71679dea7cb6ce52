package imapclient

import (
	"compress/flate"
	"io"

	"github.com/zhuhaoran/goimapengine"
)

// CompressDeflate 启用 RFC 4978 描述的 COMPRESS=DEFLATE：发送 COMPRESS
// DEFLATE 命令，服务器确认后把底层传输层原地替换成一层 DEFLATE 编解码的
// 包装，此后所有读写都透明地经过压缩——与 StartTLS 类似，真正的替换动作
// 发生在读取 goroutine 内部，避免明文/压缩字节被混淆解析。
func (c *Client) CompressDeflate() (imap.Response, error) {
	if !c.HasCapability(imap.CapCompress) {
		return imap.Response{}, &imap.ProtocolError{Reason: "server did not advertise COMPRESS=DEFLATE"}
	}
	cmd := newCommand(c.tags.newTag(), "COMPRESS", "", []string{"DEFLATE"}, "", c.opts.commandTimeout())
	cmd.setUpgrade(func() (Transport, error) {
		return c.opts.wrapTransport(newDeflateTransport(c.conn)), nil
	})
	resp, err := c.submit(cmd, "")
	if err != nil {
		return resp, err
	}
	if err := cmd.upgradeResult(); err != nil {
		return resp, err
	}
	return resp, nil
}

type deflateTransport struct {
	under Transport
	r     io.ReadCloser
	w     *flate.Writer
}

func newDeflateTransport(under Transport) *deflateTransport {
	return &deflateTransport{
		under: under,
		r:     flate.NewReader(under),
		w:     newFlateWriter(under),
	}
}

func newFlateWriter(w io.Writer) *flate.Writer {
	fw, _ := flate.NewWriter(w, flate.DefaultCompression)
	return fw
}

func (d *deflateTransport) Read(p []byte) (int, error) { return d.r.Read(p) }

func (d *deflateTransport) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, d.w.Flush()
}

func (d *deflateTransport) Close() error {
	d.r.Close()
	d.w.Close()
	return d.under.Close()
}
