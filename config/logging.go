package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/dep2p/go-msgbus/internal/util/logger"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，语法同 MSGBUS_LOG_LEVEL
	// 示例 "registry=debug,info"
	Level string `json:"level" yaml:"level"`

	// Format 输出格式：text 或 json
	Format string `json:"format" yaml:"format"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	var err error
	for _, part := range strings.Split(c.Level, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		subsystem, name, found := strings.Cut(part, "=")
		if !found {
			name = part
		} else if strings.TrimSpace(subsystem) == "" {
			err = multierr.Append(err, fmt.Errorf("log.level: empty subsystem in %q", part))
			continue
		}
		if _, ok := logger.ParseLevel(strings.TrimSpace(name)); !ok {
			err = multierr.Append(err, fmt.Errorf("log.level: unknown level %q", name))
		}
	}

	switch strings.ToLower(c.Format) {
	case "", "text", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format: unknown format %q", c.Format))
	}
	return err
}
