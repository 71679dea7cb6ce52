// Package imapclient 实现 spec.md 描述的协议引擎：一个把单条双向字节流
// 复用给多条带标签命令的异步 IMAP4rev1 客户端。
//
// 核心难点集中在三处相互纠缠的地方：(a) 一个可增量重启的解析器，用来处理
// 可能被网络读取任意切分、内部可能嵌有 CRLF 的 {n} 字面量；(b) 基于标签的
// 并发命令多路分发，每条命令各自带有截止时间；(c) 把服务器的 IDLE 推送
// 事件流式地交给调用方，同时仍能优雅退出。
package imapclient

import (
	"crypto/tls"
	"io"
	"log"
	"time"
)

const (
	// defaultConnectTimeout 是等待连接建立并收到问候的默认超时。
	defaultConnectTimeout = 10 * time.Second
	// defaultCommandTimeout 是单条命令在没有显式截止时间时使用的默认值；
	// 0 表示不设置超时（适合 IDLE 之外的长时间阻塞命令由调用方自行控制）。
	defaultCommandTimeout = 0
	// maxIdleTimeout 是 IDLE 不活动计时器允许的上限，对应 RFC 2177 建议的
	// "避免服务器在 30 分钟不活动后杀掉连接"。
	maxIdleTimeout = 29 * time.Minute
)

// Logger 是记录诊断信息的最小接口，签名与标准库 *log.Logger 兼容。
// 调用方可以接入任意日志库；未设置时退化为 log.Default()。
type Logger interface {
	Printf(format string, args ...any)
}

// Transport 是引擎之下的双向字节流。net.Conn 满足该接口；出于测试目的，
// 任何 io.ReadWriteCloser 都可以。建立连接、TLS 升级、断线重连均不是引擎
// 的职责，调用方（或 Dial* 辅助函数）负责构造并交出一个 Transport。
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// UnilateralDataHandler 接收连接在没有调用方主动等待时收到的单方面数据
// （EXISTS/EXPUNGE/FETCH 计数变化等未加标签响应，以及 IDLE 推送之外的
// 其他通知）。所有字段均为可选；nil 表示忽略该类通知。
type UnilateralDataHandler struct {
	// Mailbox 在邮箱元数据发生变化（EXISTS、EXPUNGE、FETCH 标志更新、
	// RECENT 计数变化）时被调用。
	Mailbox func(lines [][]byte)
	// BYE 在服务器发送未加标签的 "* BYE" 时被调用，紧随其后的是连接丢失。
	BYE func(text string)
}

// Options 包含构造 Client 时的可选配置。nil 等价于空的 Options{}。
type Options struct {
	// TLSConfig 用于 DialTLS 与 DialStartTLS；nil 时使用默认配置。
	TLSConfig *tls.Config
	// DebugWriter 收到的原始字节与发出的原始字节都会被写入这里（如果非
	// nil）。注意这可能包含认证过程中的敏感信息，例如口令。
	DebugWriter io.Writer
	// Logger 记录被丢弃的未加标签行、协议中止与 IDLE 状态迁移等诊断信息。
	Logger Logger
	// UnilateralDataHandler 接收单方面数据通知。
	UnilateralDataHandler *UnilateralDataHandler
	// ConnectTimeout 限定等待问候与初始 CAPABILITY 往返的时长。
	ConnectTimeout time.Duration
	// CommandTimeout 是未显式指定超时的命令使用的默认截止时间；0 表示
	// 不设置超时。
	CommandTimeout time.Duration
	// ConnLostCallback 在传输层读取出错、连接被判定丢失时被调用一次。
	ConnLostCallback func(error)
}

func (o *Options) logger() Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func (o *Options) connectTimeout() time.Duration {
	if o == nil || o.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}
	return o.ConnectTimeout
}

func (o *Options) commandTimeout() time.Duration {
	if o == nil {
		return defaultCommandTimeout
	}
	return o.CommandTimeout
}

func (o *Options) unilateralDataHandler() *UnilateralDataHandler {
	if o == nil || o.UnilateralDataHandler == nil {
		return &UnilateralDataHandler{}
	}
	return o.UnilateralDataHandler
}

// wrapTransport 在设置了 DebugWriter 时，返回一个同时把读写流量镜像写入
// DebugWriter 的包装层；否则原样返回 rw。
func (o *Options) wrapTransport(rw Transport) Transport {
	if o == nil || o.DebugWriter == nil {
		return rw
	}
	return &debugTransport{Transport: rw, w: o.DebugWriter}
}

type debugTransport struct {
	Transport
	w io.Writer
}

func (d *debugTransport) Read(p []byte) (int, error) {
	n, err := d.Transport.Read(p)
	if n > 0 {
		d.w.Write(p[:n])
	}
	return n, err
}

func (d *debugTransport) Write(p []byte) (int, error) {
	n, err := d.Transport.Write(p)
	if n > 0 {
		d.w.Write(p[:n])
	}
	return n, err
}

func (o *Options) tlsConfig() *tls.Config {
	if o != nil && o.TLSConfig != nil {
		return o.TLSConfig.Clone()
	}
	return new(tls.Config)
}
