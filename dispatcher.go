package msgbus

import (
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// busMeta 总线挂到注册表后获得的元信息
type busMeta struct {
	name     string
	arity    int
	observer Observer
	clock    clock.Clock
	log      *slog.Logger
}

func (m *busMeta) busName() string {
	if m == nil {
		return ""
	}
	return m.name
}

func (m *busMeta) subscribersChanged(n int) {
	if m == nil || m.observer == nil {
		return
	}
	m.observer.SubscribersChanged(m.name, n)
}

func (m *busMeta) now() time.Time {
	if m == nil || m.observer == nil {
		return time.Time{}
	}
	return m.clock.Now()
}

func (m *busMeta) dispatched(start time.Time, delivered int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.log.Debug("subscriber failed", "bus", m.name, "delivered", delivered, "err", err)
	}
	if m.observer != nil {
		m.observer.Dispatched(m.name, delivered, m.clock.Since(start), err)
	}
}

// entry 订阅列表中的一项
type entry[F any] struct {
	sub *Subscription
	fn  F
}

// dispatcher 所有总线变体共享的有序订阅列表
//
// 列表采用写时复制：Add/Remove 在锁内生成新切片，Send 在锁内取快照后于锁外调用，
// 因此订阅者可以在回调中重入 Add/Remove。
type dispatcher[F any] struct {
	mu      sync.Mutex
	entries []entry[F]
	meta    *busMeta
}

// Len 返回当前订阅者数量
func (d *dispatcher[F]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *dispatcher[F]) attach(meta *busMeta) {
	d.mu.Lock()
	d.meta = meta
	d.mu.Unlock()
}

func (d *dispatcher[F]) add(fn F) *Subscription {
	sub := newSubscription()
	sub.detach = func() { d.remove(sub) }

	d.mu.Lock()
	d.entries = append(d.entries, entry[F]{sub: sub, fn: fn})
	n, meta := len(d.entries), d.meta
	d.mu.Unlock()

	meta.subscribersChanged(n)
	return sub
}

func (d *dispatcher[F]) remove(sub *Subscription) {
	if sub == nil {
		return
	}

	d.mu.Lock()
	idx := -1
	for i := range d.entries {
		if d.entries[i].sub == sub {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.mu.Unlock()
		return
	}

	entries := make([]entry[F], 0, len(d.entries)-1)
	entries = append(entries, d.entries[:idx]...)
	entries = append(entries, d.entries[idx+1:]...)
	d.entries = entries
	n, meta := len(d.entries), d.meta
	d.mu.Unlock()

	sub.closed.Store(true)
	meta.subscribersChanged(n)
}

// send 按订阅顺序同步调用快照中的每个订阅者，遇到第一个错误即停止
func (d *dispatcher[F]) send(invoke func(F) error) error {
	d.mu.Lock()
	entries, meta := d.entries, d.meta
	d.mu.Unlock()

	start := meta.now()
	delivered := 0
	for i, e := range entries {
		if err := invoke(e.fn); err != nil {
			serr := &SubscriberError{
				Bus:          meta.busName(),
				Subscription: e.sub.id,
				Position:     i,
				Err:          err,
			}
			meta.dispatched(start, delivered, serr)
			return serr
		}
		delivered++
	}
	meta.dispatched(start, delivered, nil)
	return nil
}

// isNilBus 检查接口值及其中的指针是否为 nil
func isNilBus(bus MessageBus) bool {
	if bus == nil {
		return true
	}
	v := reflect.ValueOf(bus)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
