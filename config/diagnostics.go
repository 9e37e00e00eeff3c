package config

import (
	"fmt"
	"net"
)

// DefaultIntrospectAddr 自省服务默认监听地址
const DefaultIntrospectAddr = "127.0.0.1:6061"

// IntrospectConfig 自省服务配置
type IntrospectConfig struct {
	// Enabled 启用自省服务
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Addr 监听地址
	// 默认 "127.0.0.1:6061"
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultIntrospectConfig 返回默认自省配置
func DefaultIntrospectConfig() IntrospectConfig {
	return IntrospectConfig{
		Enabled: false, // 默认禁用
		Addr:    DefaultIntrospectAddr,
	}
}

// Validate 验证自省配置
func (c IntrospectConfig) Validate() error {
	if !c.Enabled || c.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("introspect.addr: %w", err)
	}
	return nil
}
