package msgbus

import "sync"

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default 返回进程级默认注册表，首次调用时创建
//
// 组件之间需要显式依赖时应优先通过 NewRegistry / Module 注入注册表。
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Of 等价于 Get[T](Default())
func Of[T any, PT interface {
	*T
	MessageBus
}]() PT {
	return Get[T, PT](Default())
}
