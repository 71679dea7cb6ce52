package imapclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/zhuhaoran/goimapengine"
)

// Client 是一条 IMAP4rev1 连接上的协议引擎：一个读取 goroutine 独占地消费
// 字节流、驱动解析器与分发逻辑；任意数量的调用方 goroutine 可以并发地
// 通过 submit 提交命令，彼此之间的先后顺序由 registry 的准入规则仲裁
// （设计说明："把连接钉在单一执行者上"——这里的执行者就是读取 goroutine）。
type Client struct {
	opts *Options
	conn Transport
	// rawConn 是 STARTTLS 升级时实际被包裹进 tls.Client 的连接；在没有
	// DebugWriter 包装的情况下它与 conn 是同一个值。
	rawConn net.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	state   imap.ConnState
	caps    imap.CapSet
	version string // 协商出的协议版本（"IMAP4REV1" 或 "IMAP4"），Connect 之后才有效

	stateCh chan struct{} // 每次状态变化后被关闭并替换，供 WaitState 使用

	tags     *tagAllocator
	registry *registry
	idleQ    *idleQueue

	curCmd  *Command // 当前正在消费未加标签延续数据的命令，nil 表示无
	parser  *parser

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

func newClient(conn Transport, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	c := &Client{
		opts:     opts,
		conn:     opts.wrapTransport(conn),
		state:    imap.ConnStateConnected,
		caps:     imap.NewCapSet(),
		stateCh:  make(chan struct{}),
		tags:     newTagAllocator(),
		registry: newRegistry(),
		idleQ:    newIdleQueue(),
		parser:   newParser(),
		closed:   make(chan struct{}),
	}
	if nc, ok := conn.(net.Conn); ok {
		c.rawConn = nc
	}
	return c
}

// New 围绕一个已经建立好的传输层（通常是 net.Conn，也可以是任意满足
// Transport 接口的值，例如测试里的 net.Pipe 端点）构造一个 Client，并
// 启动读取 goroutine 等待问候。调用方必须随后调用 Connect 完成握手。
func New(conn Transport, opts *Options) *Client {
	c := newClient(conn, opts)
	go c.readLoop()
	return c
}

// DialInsecure 以明文 TCP 连接到 addr，不做任何加密。仅用于测试或已经
// 通过其他手段（如 stunnel）加密的场景。
func DialInsecure(ctx context.Context, addr string, opts *Options) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	c := New(conn, opts)
	if err := c.Connect(opts.connectTimeout()); err != nil {
		c.conn.Close()
		return nil, err
	}
	return c, nil
}

// DialTLS 通过 TLS 连接到 addr。
func DialTLS(ctx context.Context, addr string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	d := tls.Dialer{Config: opts.tlsConfig()}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c := New(conn, opts)
	if err := c.Connect(opts.connectTimeout()); err != nil {
		c.conn.Close()
		return nil, err
	}
	return c, nil
}

// DialStartTLS 以明文方式连接，等待问候与 CAPABILITY，然后在确认服务器
// 通告 STARTTLS 之后把连接升级为 TLS。
func DialStartTLS(ctx context.Context, addr string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c := New(conn, opts)
	if err := c.Connect(opts.connectTimeout()); err != nil {
		c.conn.Close()
		return nil, err
	}
	if !c.HasCapability(imap.CapStartTLS) {
		c.conn.Close()
		return nil, &imap.ProtocolError{Reason: "server did not advertise STARTTLS"}
	}
	if _, err := c.StartTLS(opts.tlsConfig()); err != nil {
		c.conn.Close()
		return nil, err
	}
	return c, nil
}

// waitGreeting 阻塞直到读取 goroutine 处理完服务器的问候行（这会把状态从
// Connected 推进到 NotAuthenticated 或 Authenticated），或者超时。
func (c *Client) waitGreeting(timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if c.GetState() != imap.ConnStateConnected {
			return nil
		}
		ch := c.stateWaitChan()
		select {
		case <-ch:
		case <-deadline.C:
			return &imap.CommandTimeout{Tag: "", Name: "CONNECT"}
		case <-c.closed:
			return c.closeErr
		}
	}
}

// Connect 等待服务器问候把状态从 Connected 推进到 NotAuthenticated 或
// Authenticated，然后确立本连接的协商版本：如果问候没有内联
// "[CAPABILITY ...]"，就主动补发一次 CAPABILITY 追平，再从已知能力集合里
// 取出 {IMAP4REV1, IMAP4} 中出现的第一个作为协商版本；两者都没出现则以
// 协议错误失败——往后 HasCapability(imap.CapIdle) 等查询都依赖这份集合
// 是完整的，而不只是问候行里恰好带的那几个。
func (c *Client) Connect(timeout time.Duration) error {
	if err := c.waitGreeting(timeout); err != nil {
		return err
	}
	if len(c.Capabilities()) == 0 {
		// 这次 CAPABILITY 往返同样受 timeout 约束；它的未加标签应答由分发
		// 路径直接并入能力集合。
		cmd := newCommand(c.tags.newTag(), "CAPABILITY", "", nil, "", timeout)
		if _, err := c.submit(cmd, ""); err != nil {
			return err
		}
	}
	caps := c.Capabilities()
	toks := make([]string, 0, len(caps))
	for cp := range caps {
		toks = append(toks, string(cp))
	}
	version, ok := imap.NegotiatedVersion(toks)
	if !ok {
		return &imap.ProtocolError{Reason: "imapclient: server did not advertise IMAP4rev1 or IMAP4"}
	}
	c.mu.Lock()
	c.version = version
	c.mu.Unlock()
	return nil
}

// Version 返回 Connect 协商出的协议版本（"IMAP4REV1" 或 "IMAP4"），
// Connect 完成之前为空字符串。
func (c *Client) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *Client) stateWaitChan() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateCh
}

// GetState 返回当前连接状态。
func (c *Client) GetState() imap.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s imap.ConnState) {
	c.mu.Lock()
	c.state = s
	old := c.stateCh
	c.stateCh = make(chan struct{})
	c.mu.Unlock()
	close(old)
}

// WaitState 阻塞直到连接进入 want 状态、连接关闭，或者 timeout 超时。
func (c *Client) WaitState(want imap.ConnState, timeout time.Duration) error {
	var after <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		after = t.C
	}
	for {
		if c.GetState() == want {
			return nil
		}
		ch := c.stateWaitChan()
		select {
		case <-ch:
		case <-after:
			return &imap.CommandTimeout{Tag: "", Name: fmt.Sprintf("WAIT_STATE(%s)", want)}
		case <-c.closed:
			return c.closeErr
		}
	}
}

// HasCapability 判断当前已知的 CAPABILITY 集合里是否包含 cap。
func (c *Client) HasCapability(cap imap.Cap) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caps.Has(cap)
}

// Capabilities 返回当前已知能力集合的一份快照。
func (c *Client) Capabilities() imap.CapSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return imap.NewCapSet().Union(c.caps)
}

func (c *Client) setCapabilities(tokens []string) {
	set := imap.NewCapSet(tokens...)
	c.mu.Lock()
	c.caps = set
	c.mu.Unlock()
}

func (c *Client) mergeCapabilities(tokens []string) {
	extra := imap.NewCapSet(tokens...)
	c.mu.Lock()
	c.caps = c.caps.Union(extra)
	c.mu.Unlock()
}

// terminate 无条件关闭底层传输层，并让所有挂起的命令以 TransportLost 告终；
// 不发送任何 IMAP 命令。Disconnect 在完成其优雅的挥手序列之后用它收尾。
// Dial* 的出错路径不经过它，而是直接关闭 c.conn。
func (c *Client) terminate() error {
	c.closeOnce.Do(func() {
		c.closeErr = &imap.TransportLost{Cause: fmt.Errorf("imapclient: closed locally")}
		c.conn.Close()
	})
	return nil
}

// Disconnect 对应 aioimaplib 的 connection_close：如果正在 IDLE 就先发
// DONE，如果邮箱已选中就发 CLOSE，然后发 LOGOUT，最后无论前面几步是否
// 出错都会关闭底层传输层。调用方想要的"彻底断开"语义由这个方法提供；
// Close 只对应 IMAP 的 CLOSE 命令（Selected -> Authenticated）。
func (c *Client) Disconnect() error {
	if cmd := c.registry.getSync(); cmd != nil && cmd.name == "IDLE" {
		if err := c.writeLine("DONE", ""); err == nil {
			_ = cmd.wait()
		}
		c.registry.clearSync(cmd)
	}
	if c.GetState() == imap.ConnStateSelected {
		_, _ = c.Close()
	}
	if c.GetState() != imap.ConnStateLogout {
		_, _ = c.Logout()
	}
	return c.terminate()
}

func (c *Client) failAllPending(err error) {
	for _, cmd := range c.registry.all() {
		cmd.finish(err)
	}
	c.idleQ.closeWith(err)
}

// readLoop 是唯一允许调用 parser/dispatch 的 goroutine；它既是字节流的
// 读取者，也是协议状态机的唯一写者，从而让调度逻辑不需要额外的锁。
func (c *Client) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.parser.feed(buf[:n], c)
		}
		if err != nil {
			closeErr := &imap.TransportLost{Cause: err}
			c.mu.Lock()
			if c.closeErr == nil {
				c.closeErr = closeErr
			}
			final := c.closeErr
			c.mu.Unlock()
			close(c.closed)
			c.failAllPending(final)
			if cb := c.opts.ConnLostCallback; cb != nil {
				cb(final)
			}
			return
		}
	}
}

func (c *Client) logf(format string, args ...any) {
	c.opts.logger().Printf(format, args...)
}

// performUpgrade 运行 cmd 登记的升级函数，原地替换底层传输层。只应从
// handleTagged 内部调用——也就是说，只应在读取 goroutine 自己的调用栈里、
// 在这条命令被 close 唤醒等待者之前调用，这样调用方看到 wait() 返回时，
// 连接已经处于升级后的状态。
func (c *Client) performUpgrade(cmd *Command) {
	newConn, err := cmd.upgradeFn()
	if err == nil {
		c.conn = newConn
		if nc, ok := newConn.(net.Conn); ok {
			c.rawConn = nc
		}
	}
	cmd.upgradeErr = err
}
