// Package config 提供 msgbus 的统一配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义；
// 支持从 JSON / YAML 加载、保存以及预设配置（development/production）。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Registry.Strict = true
//
//	cfg, err := config.LoadFile("msgbus.yaml")
package config

import "go.uber.org/multierr"

// Config 是 msgbus 的完整配置结构
//
//   - Registry: 注册表行为
//   - Log: 日志
//   - Metrics: Prometheus 指标
//   - Introspect: 本地自省 HTTP 服务
type Config struct {
	// Registry 注册表配置
	Registry RegistryConfig `json:"registry" yaml:"registry"`

	// Log 日志配置
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Introspect 自省服务配置
	Introspect IntrospectConfig `json:"introspect" yaml:"introspect"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Registry:   DefaultRegistryConfig(),
		Log:        DefaultLogConfig(),
		Metrics:    DefaultMetricsConfig(),
		Introspect: DefaultIntrospectConfig(),
	}
}

// Validate 验证配置，返回所有子配置的错误合集
func (c *Config) Validate() error {
	return multierr.Combine(
		c.Registry.Validate(),
		c.Log.Validate(),
		c.Metrics.Validate(),
		c.Introspect.Validate(),
	)
}
