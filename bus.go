package msgbus

// MessageBus 总线能力契约
//
// 只有嵌入了 Bus0..Bus4 之一的类型才满足该接口：
//
//	type Ping struct{ msgbus.Bus0 }
//	type Score struct{ msgbus.Bus1[int] }
type MessageBus interface {
	// Arity 消息参数个数（0..4）
	Arity() int

	// Len 当前订阅者数量
	Len() int

	attach(meta *busMeta)
}

// nilSubscription 添加 nil 回调时返回的凭证：已取消，不在订阅列表中
func nilSubscription() *Subscription {
	sub := newSubscription()
	sub.closed.Store(true)
	return sub
}

// ============================================================================
// 无参数
// ============================================================================

// Bus0 无参数消息总线，零值可用
type Bus0 struct {
	dispatcher[func() error]
}

// Arity 返回 0
func (b *Bus0) Arity() int { return 0 }

// Add 追加订阅者，返回订阅凭证
//
// fn 为 nil 时不做任何事，返回一个已取消的凭证。
func (b *Bus0) Add(fn func() error) *Subscription {
	if fn == nil {
		return nilSubscription()
	}
	return b.add(fn)
}

// Remove 取消订阅；凭证不属于该总线或已取消时什么也不做
func (b *Bus0) Remove(sub *Subscription) { b.remove(sub) }

// Send 按订阅顺序同步通知所有订阅者
func (b *Bus0) Send() error {
	return b.send(func(fn func() error) error { return fn() })
}

// ============================================================================
// 一个参数
// ============================================================================

// Bus1 单参数消息总线，零值可用
type Bus1[T1 any] struct {
	dispatcher[func(T1) error]
}

// Arity 返回 1
func (b *Bus1[T1]) Arity() int { return 1 }

// Add 追加订阅者，返回订阅凭证
func (b *Bus1[T1]) Add(fn func(T1) error) *Subscription {
	if fn == nil {
		return nilSubscription()
	}
	return b.add(fn)
}

// Remove 取消订阅
func (b *Bus1[T1]) Remove(sub *Subscription) { b.remove(sub) }

// Send 按订阅顺序同步通知所有订阅者
func (b *Bus1[T1]) Send(a1 T1) error {
	return b.send(func(fn func(T1) error) error { return fn(a1) })
}

// ============================================================================
// 两个参数
// ============================================================================

// Bus2 双参数消息总线，零值可用
type Bus2[T1, T2 any] struct {
	dispatcher[func(T1, T2) error]
}

// Arity 返回 2
func (b *Bus2[T1, T2]) Arity() int { return 2 }

// Add 追加订阅者，返回订阅凭证
func (b *Bus2[T1, T2]) Add(fn func(T1, T2) error) *Subscription {
	if fn == nil {
		return nilSubscription()
	}
	return b.add(fn)
}

// Remove 取消订阅
func (b *Bus2[T1, T2]) Remove(sub *Subscription) { b.remove(sub) }

// Send 按订阅顺序同步通知所有订阅者
func (b *Bus2[T1, T2]) Send(a1 T1, a2 T2) error {
	return b.send(func(fn func(T1, T2) error) error { return fn(a1, a2) })
}

// ============================================================================
// 三个参数
// ============================================================================

// Bus3 三参数消息总线，零值可用
type Bus3[T1, T2, T3 any] struct {
	dispatcher[func(T1, T2, T3) error]
}

// Arity 返回 3
func (b *Bus3[T1, T2, T3]) Arity() int { return 3 }

// Add 追加订阅者，返回订阅凭证
func (b *Bus3[T1, T2, T3]) Add(fn func(T1, T2, T3) error) *Subscription {
	if fn == nil {
		return nilSubscription()
	}
	return b.add(fn)
}

// Remove 取消订阅
func (b *Bus3[T1, T2, T3]) Remove(sub *Subscription) { b.remove(sub) }

// Send 按订阅顺序同步通知所有订阅者
func (b *Bus3[T1, T2, T3]) Send(a1 T1, a2 T2, a3 T3) error {
	return b.send(func(fn func(T1, T2, T3) error) error { return fn(a1, a2, a3) })
}

// ============================================================================
// 四个参数
// ============================================================================

// Bus4 四参数消息总线，零值可用
type Bus4[T1, T2, T3, T4 any] struct {
	dispatcher[func(T1, T2, T3, T4) error]
}

// Arity 返回 4
func (b *Bus4[T1, T2, T3, T4]) Arity() int { return 4 }

// Add 追加订阅者，返回订阅凭证
func (b *Bus4[T1, T2, T3, T4]) Add(fn func(T1, T2, T3, T4) error) *Subscription {
	if fn == nil {
		return nilSubscription()
	}
	return b.add(fn)
}

// Remove 取消订阅
func (b *Bus4[T1, T2, T3, T4]) Remove(sub *Subscription) { b.remove(sub) }

// Send 按订阅顺序同步通知所有订阅者
func (b *Bus4[T1, T2, T3, T4]) Send(a1 T1, a2 T2, a3 T3, a4 T4) error {
	return b.send(func(fn func(T1, T2, T3, T4) error) error { return fn(a1, a2, a3, a4) })
}

// 编译期检查
var (
	_ MessageBus = (*Bus0)(nil)
	_ MessageBus = (*Bus1[int])(nil)
	_ MessageBus = (*Bus2[int, int])(nil)
	_ MessageBus = (*Bus3[int, int, int])(nil)
	_ MessageBus = (*Bus4[int, int, int, int])(nil)
)
