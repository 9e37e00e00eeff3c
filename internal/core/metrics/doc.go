// Package metrics 提供消息总线的 Prometheus 指标
//
// Collector 实现 msgbus.Observer，注册表在创建总线、订阅者变化和每次
// Send 完成时回调它，Collector 将这些事件转换为以下指标（前缀可配置）：
//
//	msgbus_buses                          已创建的总线数量
//	msgbus_subscribers{bus}               当前订阅者数量
//	msgbus_sends_total{bus}               Send 次数
//	msgbus_send_errors_total{bus}         被订阅者错误中止的 Send 次数
//	msgbus_deliveries_total{bus}          成功送达的订阅者调用次数
//	msgbus_dispatch_duration_seconds{bus} 单次 Send 耗时
//
// # 快速开始
//
//	collector := metrics.NewCollector(cfg.Metrics, prometheus.NewRegistry())
//	reg := msgbus.NewRegistry(msgbus.WithObserver(collector))
//
// # Fx 集成
//
//	app := fx.New(
//	    metrics.Module(),
//	    msgbus.Module(),
//	)
//
// Module 在指标被禁用时不提供 Observer，注册表退化为无观察者模式。
package metrics
