package config

// RegistryConfig 注册表配置
type RegistryConfig struct {
	// Strict 严格模式
	// 只允许构造通过 Register 注册了工厂的总线类型
	Strict bool `json:"strict" yaml:"strict"`
}

// DefaultRegistryConfig 返回默认注册表配置
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Strict: false,
	}
}

// Validate 验证注册表配置
func (c RegistryConfig) Validate() error {
	return nil
}
