// Package logger 提供 msgbus 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按子系统配置日志级别
//   - 环境变量配置（MSGBUS_LOG_LEVEL, MSGBUS_LOG_FORMAT）
//   - 运行时调整（Configure, SetLevel, SetOutput）
//
// 使用示例:
//
//	var log = logger.Logger("registry")
//
//	func foo() {
//	    log.Debug("bus created", "bus", name, "arity", arity)
//	}
//
// 环境变量配置:
//
//	# 所有模块 info，registry 模块 debug
//	MSGBUS_LOG_LEVEL=registry=debug,info
//
//	# JSON 格式输出
//	MSGBUS_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// handlers 缓存各子系统的 Handler（用于动态调整级别）
	handlers sync.Map // map[string]*subsystemHandler

	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回相同的 Logger 实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	handler := newHandler(subsystem, cfg.LevelForSubsystem(subsystem), cfg.Format, cfg.AddSource)
	logger := slog.New(handler)

	actual, loaded := loggers.LoadOrStore(subsystem, logger)
	if !loaded {
		handlers.Store(subsystem, handler)
	}
	return actual.(*slog.Logger)
}

// GlobalLogger 返回全局 Logger
//
// 用于不属于特定子系统的日志。
func GlobalLogger() *slog.Logger {
	globalLoggerOnce.Do(func() {
		globalLogger = Logger("msgbus")
	})
	return globalLogger
}

// SetLevel 动态设置子系统的日志级别
//
//	logger.SetLevel("registry", slog.LevelDebug)
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).SetLevel(level)
	}
}

// LevelOf 返回子系统当前的日志级别
//
// 子系统尚未创建 Logger 时返回配置中的级别。
func LevelOf(subsystem string) slog.Level {
	if h, ok := handlers.Load(subsystem); ok {
		return h.(*subsystemHandler).Level()
	}
	return ConfigFromEnv().LevelForSubsystem(subsystem)
}

// SetGlobalLevel 设置所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	handlers.Range(func(_, value any) bool {
		value.(*subsystemHandler).SetLevel(level)
		return true
	})
}

// Discard 返回一个丢弃所有日志的 Logger
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// With 创建带有预设属性的 Logger
func With(subsystem string, args ...any) *slog.Logger {
	return Logger(subsystem).With(args...)
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 通过 dynamicWriter 自动重定向到新的 writer。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
