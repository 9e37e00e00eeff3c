package msgbus

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-msgbus/internal/util/logger"
)

// Observer 观察总线活动
//
// 回调在调用方 goroutine 上同步执行，实现必须并发安全且不能阻塞。
type Observer interface {
	// BusCreated 注册表创建了新的总线实例
	BusCreated(name string, arity int)

	// SubscribersChanged 订阅者数量变化
	SubscribersChanged(name string, subscribers int)

	// Dispatched 一次 Send 完成
	//
	// delivered 为成功返回的订阅者数量，err 为中止发送的订阅者错误。
	Dispatched(name string, delivered int, elapsed time.Duration, err error)
}

// Option 注册表选项
type Option func(*settings)

type settings struct {
	observer Observer
	clock    clock.Clock
	strict   bool
	logger   *slog.Logger
}

func defaultSettings() settings {
	return settings{
		clock:  clock.New(),
		logger: logger.Logger("registry"),
	}
}

// WithObserver 设置观察者
func WithObserver(o Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithClock 设置计时用的时钟（测试中可注入 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithStrict 严格模式：只允许构造已注册工厂的总线类型
func WithStrict(strict bool) Option {
	return func(s *settings) {
		s.strict = strict
	}
}

// WithLogger 设置注册表使用的 Logger
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
