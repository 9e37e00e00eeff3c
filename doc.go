// Package msgbus 实现进程内按类型区分的同步消息总线
//
// 每个总线类型在注册表中只有一个实例，首次查找时创建。
// 总线按消息参数个数分为 Bus0..Bus4 五种变体，通过嵌入来声明具体总线：
//
//	type Ping struct{ msgbus.Bus0 }
//	type Score struct{ msgbus.Bus1[int] }
//
// # 快速开始
//
//	reg := msgbus.NewRegistry()
//
//	// 订阅
//	sub := msgbus.Get[Score](reg).Add(func(v int) error {
//	    fmt.Println("score", v)
//	    return nil
//	})
//	defer sub.Close()
//
//	// 发送（同步，按订阅顺序调用）
//	if err := msgbus.Get[Score](reg).Send(42); err != nil {
//	    // 某个订阅者返回了错误，其后的订阅者没有被调用
//	}
//
// # 投递语义
//
//   - Send 在调用方 goroutine 上按订阅顺序同步调用每个订阅者
//   - Send 针对调用开始时的订阅快照，回调内可以 Add/Remove
//   - 第一个返回错误的订阅者中止本次发送，错误包装为 *SubscriberError 返回
//   - 订阅者 panic 原样向上传播
//   - 同一回调可以订阅多次，每次 Add 返回独立的 Subscription，Remove 只移除对应的一次
//
// # 注册表
//
// Registry 是显式的上下文对象，可通过 Module() 注入；Default() 提供进程级实例。
// Register 为类型登记显式工厂；严格模式（WithStrict）下未登记的类型无法构造。
//
// # 并发安全
//
//   - 注册表：Mutex 保护映射，每个条目 sync.Once 构造
//   - 总线：Mutex 保护订阅列表，写时复制
//   - 订阅 ID：atomic.Uint64
//
// 注意：工厂内不能查找自身类型。
package msgbus
