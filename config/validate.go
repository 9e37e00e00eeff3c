package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并修复可以自动修复的问题
//
// 可修复的问题：
//   - 空的日志级别/格式 -> 使用默认值
//   - 空的指标前缀 -> "msgbus"
//   - 启用自省但地址为空 -> 默认地址
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig().Level
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig().Format
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}
	if c.Introspect.Enabled && c.Introspect.Addr == "" {
		c.Introspect.Addr = DefaultIntrospectAddr
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed after fix: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，失败时 panic
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
}
