package msgbus

import (
	"errors"
	"fmt"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 注册表错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidBusType 无效的总线类型（nil 类型描述符）
	ErrInvalidBusType = errors.New("invalid bus type")

	// ErrNotMessageBus 类型没有嵌入任何总线变体
	ErrNotMessageBus = errors.New("type does not embed a message bus")

	// ErrNotRegistered 严格模式下类型没有注册工厂
	ErrNotRegistered = errors.New("bus type not registered")

	// ErrConstruction 总线实例构造失败
	ErrConstruction = errors.New("bus construction failed")

	// ErrNilFactory 注册了 nil 工厂
	ErrNilFactory = errors.New("nil bus factory")

	// ErrDuplicateFactory 同一类型重复注册工厂
	ErrDuplicateFactory = errors.New("bus factory already registered")

	// ErrAlreadyCreated 该类型已经尝试过构造（无论成功或失败），不能再注册工厂
	ErrAlreadyCreated = errors.New("bus construction already attempted")
)

// SubscriberError 订阅者在 Send 过程中返回的错误
//
// 出错的订阅者之后的订阅者不会被调用。
type SubscriberError struct {
	// Bus 总线名称（未挂到注册表的总线为空）
	Bus string

	// Subscription 出错的订阅 ID
	Subscription uint64

	// Position 出错订阅者在本次发送快照中的位置
	Position int

	// Err 订阅者返回的原始错误
	Err error
}

func (e *SubscriberError) Error() string {
	if e.Bus == "" {
		return fmt.Sprintf("msgbus: subscriber %d: %v", e.Subscription, e.Err)
	}
	return fmt.Sprintf("msgbus: %s: subscriber %d: %v", e.Bus, e.Subscription, e.Err)
}

func (e *SubscriberError) Unwrap() error {
	return e.Err
}
