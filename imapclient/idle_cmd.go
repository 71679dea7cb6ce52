package imapclient

import (
	"time"

	"github.com/zhuhaoran/goimapengine"
)

// IdleCommand 代表一条已经被服务器接纳、正在进行中的 IDLE（RFC 2177）。
// 调用方通过 WaitServerPush 消费期间到达的未加标签通知，通过 Done 发送
// "DONE" 结束它。一条连接上同时只能有一条 IDLE（由 registry 的同步槽位
// 保证），对应教师代码里 IdleCommand 的 Close/Wait 用法。
type IdleCommand struct {
	client *Client
	cmd    *Command
	timer  *time.Timer
}

// IdleStart 发送 IDLE 并阻塞直到服务器以延续响应（"+ idling"）接纳它，
// 或者发生错误/超时。成功后返回的 IdleCommand 必须最终被 Done。
//
// timeout 限定这条 IDLE 在没有调用方介入时最多维持多久：到期后引擎自动
// 发送 "DONE"，就像调用方自己调用了 Done 一样。timeout<=0 时退化为
// maxIdleTimeout（RFC 2177 建议的 29 分钟上限），而不是完全不设上限——
// 服务器通常在更长的不活动期之后单方面断开连接。
func (c *Client) IdleStart(timeout time.Duration) (*IdleCommand, error) {
	spec, ok := imap.LookupCommand("IDLE")
	if !ok || !spec.ValidIn(c.GetState()) {
		return nil, &imap.ProtocolError{Reason: "IDLE is not valid in the current state"}
	}
	if !c.HasCapability(imap.CapIdle) {
		return nil, &imap.ProtocolError{Reason: "server did not advertise IDLE"}
	}
	if timeout <= 0 {
		timeout = maxIdleTimeout
	}

	cmd := newIdleCommand(c.tags.newTag(), c.idleQ)
	c.registry.admitSync(cmd)

	if err := c.writeLine(cmd.String(), ""); err != nil {
		c.registry.clearSync(cmd)
		cmd.finish(err)
		return nil, err
	}

	activationTimeout := c.opts.commandTimeout()
	if activationTimeout <= 0 {
		activationTimeout = defaultConnectTimeout
	}
	t := time.NewTimer(activationTimeout)
	defer t.Stop()

	select {
	case <-cmd.idleActivated():
	case <-t.C:
		c.registry.clearSync(cmd)
		err := &imap.CommandTimeout{Tag: cmd.tag, Name: "IDLE"}
		cmd.finish(err)
		return nil, err
	case <-c.closed:
		c.registry.clearSync(cmd)
		return nil, c.closeErr
	}

	ic := &IdleCommand{client: c, cmd: cmd}
	ic.timer = time.AfterFunc(timeout, func() {
		c.logf("imapclient: IDLE timeout elapsed, sending DONE")
		ic.Done()
	})
	return ic, nil
}

// Done 发送 "DONE"，等待服务器以带标签状态响应结束 IDLE，并释放同步槽位。
func (ic *IdleCommand) Done() error {
	if ic.timer != nil {
		ic.timer.Stop()
	}
	if err := ic.client.writeLine("DONE", ""); err != nil {
		ic.client.registry.clearSync(ic.cmd)
		return err
	}
	err := ic.cmd.wait()
	ic.client.registry.clearSync(ic.cmd)
	if ic.client.curCmd == ic.cmd {
		ic.client.curCmd = nil
	}
	return err
}

// WaitServerPush 阻塞直到 IDLE 期间收到至少一批未加标签数据、
// StopWaitServerPush 被调用，或者 timeout 到期。timeout<=0 表示无限等待。
// 返回的 batch 为 nil 且 err 为 nil 表示 StopWaitServerPush 被调用过。
func (ic *IdleCommand) WaitServerPush(timeout time.Duration) (batch [][]byte, err error) {
	return ic.client.idleQ.pop(timeout)
}

// StopWaitServerPush 唤醒一次正在阻塞的 WaitServerPush 调用，但不结束 IDLE 本身。
func (ic *IdleCommand) StopWaitServerPush() {
	ic.client.idleQ.push(nil)
}

// HasPendingIdleCommand 判断当前是否存在一条尚未 Done 的 IDLE。
func (c *Client) HasPendingIdleCommand() bool {
	sync := c.registry.getSync()
	return sync != nil && sync.name == "IDLE"
}
