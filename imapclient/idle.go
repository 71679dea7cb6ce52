package imapclient

import (
	"sync"
	"time"

	"github.com/zhuhaoran/goimapengine"
)

// idleQueue 把 IDLE 期间到达的未加标签数据批次从读取 goroutine 转交给
// 调用 WaitServerPush 的那个 goroutine，语义上对应 aioimaplib 的
// push_queue：一个无界的 FIFO，外加一个一次性的关闭信号。等待者不用条件
// 变量加后台 goroutine（那样每次超时都会留下一个一直停在 cond.Wait() 里
// 的 goroutine，直到队列后续某次 push/close 才会被唤醒退出），而是复用
// Client.stateCh 那种"关闭并替换"的通知通道，配合 select 直接支持超时。
type idleQueue struct {
	mu      sync.Mutex
	items   [][][]byte
	err     error
	closed  bool
	readyCh chan struct{}
}

func newIdleQueue() *idleQueue {
	return &idleQueue{readyCh: make(chan struct{})}
}

func (q *idleQueue) push(batch [][]byte) {
	q.mu.Lock()
	if !q.closed {
		q.items = append(q.items, batch)
	}
	q.notifyLocked()
	q.mu.Unlock()
}

func (q *idleQueue) notifyLocked() {
	close(q.readyCh)
	q.readyCh = make(chan struct{})
}

// pop 阻塞直到有一批数据可用、队列被关闭，或者 timeout 到期（timeout<=0
// 表示无限等待）。超时返回时不会留下任何等待中的 goroutine。
func (q *idleQueue) pop(timeout time.Duration) ([][]byte, error) {
	var after <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		after = t.C
	}
	for {
		q.mu.Lock()
		if len(q.items) > 0 || q.closed {
			batch, err := q.popLocked()
			q.mu.Unlock()
			return batch, err
		}
		ready := q.readyCh
		q.mu.Unlock()

		select {
		case <-ready:
		case <-after:
			return nil, &imap.CommandTimeout{Name: "WAIT_SERVER_PUSH"}
		}
	}
}

func (q *idleQueue) popLocked() ([][]byte, error) {
	if len(q.items) > 0 {
		item := q.items[0]
		q.items = q.items[1:]
		return item, nil
	}
	return nil, q.err
}

func (q *idleQueue) closeWith(err error) {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.err = err
		q.notifyLocked()
	}
	q.mu.Unlock()
}
