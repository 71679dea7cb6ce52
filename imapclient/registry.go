package imapclient

import "sync"

// registry 是 PendingRegistry 的实现：至多一个同步命令槽位，外加一个从
// 未加标签响应名到异步命令的映射。规则：任意时刻，同步槽位与异步映射不会
// 同时非空（可测试属性 §8.2）——admitSync/admitAsync 把"等待槽位空出"与
// "装入槽位"绑成一次不可分割的操作，保证这条规则没有瞬时违反的窗口。
//
// 解析/调度路径（读取 goroutine）只读取这里的数据来定位某一行应当投递给
// 哪条命令；submit 等提交路径的调用方（可能是任意 goroutine）负责在这里登记/注销
// 自己提交的命令。mu 序列化这两类访问。
type registry struct {
	mu sync.Mutex
	// admMu 序列化准入：等待槽位空出与把命令装进槽位必须是一个不可分割的
	// 整体，否则两个并发提交者都可能在各自看到槽位已空之后装入自己的命令，
	// 后装入的那个会覆盖前一个的登记，前一个的标签从此在 registry 里找不到，
	// 它的带标签响应永远没人认领，直到超时（可测试属性 §8.2）。mu 只负责
	// 保护数据本身的读写，不跨等待持有。
	admMu     sync.Mutex
	syncCmd   *Command
	asyncCmds map[string]*Command
}

func newRegistry() *registry {
	return &registry{asyncCmds: make(map[string]*Command)}
}

// admitSync 阻塞直到同步槽位与异步映射都为空，然后把 cmd 原子地装进同步
// 槽位——检查与安装之间不会有另一个提交者插队。
func (r *registry) admitSync(cmd *Command) {
	r.admMu.Lock()
	defer r.admMu.Unlock()
	for {
		r.mu.Lock()
		if r.syncCmd == nil && len(r.asyncCmds) == 0 {
			r.syncCmd = cmd
			r.mu.Unlock()
			return
		}
		sync := r.syncCmd
		pending := make([]*Command, 0, len(r.asyncCmds))
		for _, c := range r.asyncCmds {
			pending = append(pending, c)
		}
		r.mu.Unlock()
		if sync != nil {
			sync.wait()
		}
		for _, c := range pending {
			c.wait()
		}
	}
}

// admitAsync 阻塞直到没有同步命令在途、且 name 下没有挂起的异步命令，然后
// 把 cmd 原子地装进异步映射，同样不留"检查完但还没装入"的空档。
func (r *registry) admitAsync(name string, cmd *Command) {
	r.admMu.Lock()
	defer r.admMu.Unlock()
	for {
		r.mu.Lock()
		if r.syncCmd == nil && r.asyncCmds[name] == nil {
			r.asyncCmds[name] = cmd
			r.mu.Unlock()
			return
		}
		sync := r.syncCmd
		cur := r.asyncCmds[name]
		r.mu.Unlock()
		if sync != nil {
			sync.wait()
		} else if cur != nil {
			cur.wait()
		}
	}
}

func (r *registry) clearSync(cmd *Command) {
	r.mu.Lock()
	if r.syncCmd == cmd {
		r.syncCmd = nil
	}
	r.mu.Unlock()
}

func (r *registry) clearAsync(name string, cmd *Command) {
	r.mu.Lock()
	if r.asyncCmds[name] == cmd {
		delete(r.asyncCmds, name)
	}
	r.mu.Unlock()
}

func (r *registry) getSync() *Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.syncCmd
}

func (r *registry) getAsync(name string) *Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.asyncCmds[name]
}

// findByTag 在同步槽位与异步映射里查找带有给定标签的命令，返回命令本身
// 以及（若是异步命令）它在映射里登记时使用的键，以便调用方随后能把它从
// 映射中移除。
func (r *registry) findByTag(tag string) (cmd *Command, asyncKey string, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.syncCmd != nil && r.syncCmd.tag == tag {
		return r.syncCmd, "", true
	}
	for key, c := range r.asyncCmds {
		if c.tag == tag {
			return c, key, true
		}
	}
	return nil, "", false
}

// all 返回当前所有挂起命令的快照，用于连接丢失时统一判定失败。
func (r *registry) all() []*Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Command
	if r.syncCmd != nil {
		out = append(out, r.syncCmd)
	}
	for _, c := range r.asyncCmds {
		out = append(out, c)
	}
	return out
}
