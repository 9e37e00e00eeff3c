package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
//	{
//	  "registry": {"strict": true},
//	  "log": {"level": "registry=debug,info"},
//	  "introspect": {"enabled": true, "addr": "127.0.0.1:6061"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为带缩进的 JSON
func ToJSON(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// FromYAML 从 YAML 数据创建配置
func FromYAML(data []byte) (*Config, error) {
	cfg := NewConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToYAML 将配置序列化为 YAML
func ToYAML(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return yaml.Marshal(cfg)
}

// LoadFile 按扩展名（.json / .yaml / .yml）加载配置文件并验证
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		cfg, err = FromJSON(data)
	case ".yaml", ".yml":
		cfg, err = FromYAML(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension: %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "development": debug 日志、启用自省服务
//   - "production": 严格模式、warn 日志、JSON 输出
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case "development":
		cfg.Log.Level = "debug"
		cfg.Log.Format = "text"
		cfg.Introspect.Enabled = true
		cfg.Metrics.Enabled = true
		return nil
	case "production":
		cfg.Registry.Strict = true
		cfg.Log.Level = "warn"
		cfg.Log.Format = "json"
		cfg.Metrics.Enabled = true
		return nil
	case "":
		return nil
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
}
