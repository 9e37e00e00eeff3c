// Package introspect 提供本地自省 HTTP 服务
//
// 该服务运行在本地端口，提供 JSON 格式的注册表诊断信息，用于调试和监控。
// 默认绑定到 127.0.0.1，不暴露到网络。
//
// # 端点
//
//	GET /debug/msgbus         - 完整诊断报告 (JSON)
//	GET /debug/msgbus/buses   - 总线列表
//	GET /debug/msgbus/runtime - 运行时信息
//	GET /metrics              - Prometheus 指标（需要 Gatherer）
//	GET /debug/pprof/*        - Go pprof 端点
//	GET /health               - 健康检查
//
// # 使用示例
//
//	server := introspect.New(introspect.Config{
//	    Addr:     "127.0.0.1:6061",
//	    Registry: reg,
//	})
//	server.Start(ctx)
//	defer server.Stop()
//
//	// 访问 http://127.0.0.1:6061/debug/msgbus
//
// 通过 config.Introspect.Enabled 配置启用。
package introspect
