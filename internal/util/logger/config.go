package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认日志级别
	DefaultLevel slog.Level

	// SubsystemLevels 各子系统的日志级别
	SubsystemLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// AddSource 是否添加源码位置
	AddSource bool
}

// LevelForSubsystem 获取指定子系统的日志级别
func (c *Config) LevelForSubsystem(subsystem string) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

var (
	configCache *Config
	configOnce  sync.Once
	configMu    sync.RWMutex
)

// ConfigFromEnv 从环境变量解析配置
//
// 环境变量:
//   - MSGBUS_LOG_LEVEL: 日志级别配置
//     格式: 子系统=级别,子系统=级别,默认级别
//     示例: registry=debug,introspect=warn,info
//   - MSGBUS_LOG_FORMAT: text 或 json
//   - MSGBUS_LOG_ADD_SOURCE: true 或 false
func ConfigFromEnv() *Config {
	configOnce.Do(func() {
		cfg := parseConfig()
		configMu.Lock()
		configCache = cfg
		configMu.Unlock()
	})
	configMu.RLock()
	defer configMu.RUnlock()
	return configCache
}

// parseConfig 解析环境变量配置
func parseConfig() *Config {
	cfg := &Config{
		DefaultLevel:    slog.LevelInfo,
		SubsystemLevels: make(map[string]slog.Level),
		Format:          FormatText,
		AddSource:       false,
	}

	if levelStr := os.Getenv("MSGBUS_LOG_LEVEL"); levelStr != "" {
		parseLevelConfig(cfg, levelStr)
	}

	if formatStr := os.Getenv("MSGBUS_LOG_FORMAT"); formatStr != "" {
		cfg.Format = parseFormat(formatStr)
	}

	if addSourceStr := os.Getenv("MSGBUS_LOG_ADD_SOURCE"); addSourceStr != "" {
		cfg.AddSource = addSourceStr != "false" && addSourceStr != "0"
	}

	return cfg
}

// parseLevelConfig 解析日志级别配置字符串
// 格式: subsystem=level,subsystem=level,defaultLevel
func parseLevelConfig(cfg *Config, levelStr string) {
	for _, part := range strings.Split(levelStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		subsystem, levelName, found := strings.Cut(part, "=")
		if !found {
			if level, ok := ParseLevel(part); ok {
				cfg.DefaultLevel = level
			}
			continue
		}
		if level, ok := ParseLevel(strings.TrimSpace(levelName)); ok {
			cfg.SubsystemLevels[strings.TrimSpace(subsystem)] = level
		}
	}
}

// parseFormat 解析输出格式，未知值按文本处理
func parseFormat(name string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(name), "json") {
		return FormatJSON
	}
	return FormatText
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Configure 使用显式配置覆盖环境变量配置
//
// level 与 MSGBUS_LOG_LEVEL 语法相同；format 为 text 或 json。
// 已创建的 Logger 会同步调整级别，格式变化只影响之后创建的 Logger。
func Configure(level, format string) error {
	cfg := ConfigFromEnv()
	next := &Config{
		DefaultLevel:    cfg.DefaultLevel,
		SubsystemLevels: make(map[string]slog.Level, len(cfg.SubsystemLevels)),
		Format:          cfg.Format,
		AddSource:       cfg.AddSource,
	}
	for k, v := range cfg.SubsystemLevels {
		next.SubsystemLevels[k] = v
	}

	if level != "" {
		for _, part := range strings.Split(level, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			_, name, found := strings.Cut(part, "=")
			if !found {
				name = part
			}
			if _, ok := ParseLevel(strings.TrimSpace(name)); !ok {
				return fmt.Errorf("unknown log level %q", name)
			}
		}
		parseLevelConfig(next, level)
	}
	if format != "" {
		next.Format = parseFormat(format)
	}

	configMu.Lock()
	configCache = next
	configMu.Unlock()

	handlers.Range(func(key, value any) bool {
		value.(*subsystemHandler).SetLevel(next.LevelForSubsystem(key.(string)))
		return true
	})
	return nil
}

// ResetConfig 重置配置缓存（仅用于测试）
func ResetConfig() {
	configMu.Lock()
	configOnce = sync.Once{}
	configCache = nil
	configMu.Unlock()
}
