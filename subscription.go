package msgbus

import (
	"sync"
	"sync/atomic"
)

// nextSubscriptionID 进程内单调递增的订阅 ID
var nextSubscriptionID atomic.Uint64

// Subscription 订阅凭证
//
// Add 返回的凭证唯一标识一次订阅，同一回调添加两次会得到两个凭证。
// 通过 Close 或总线的 Remove 取消订阅。
type Subscription struct {
	id        uint64
	detach    func()
	closeOnce sync.Once
	closed    atomic.Bool
}

func newSubscription() *Subscription {
	return &Subscription{id: nextSubscriptionID.Add(1)}
}

// ID 返回订阅 ID
func (s *Subscription) ID() uint64 {
	return s.id
}

// Closed 订阅是否已取消
func (s *Subscription) Closed() bool {
	return s.closed.Load()
}

// Close 取消订阅
//
// Close 是并发安全的，可以多次调用。正在进行的 Send 仍可能调用到该订阅者。
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		if s.detach != nil {
			s.detach()
		}
		s.closed.Store(true)
	})
	return nil
}
