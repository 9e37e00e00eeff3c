package config

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"
)

var metricNamespaceRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// Enabled 是否启用指标收集
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Namespace 指标名前缀，默认 "msgbus"
	Namespace string `json:"namespace" yaml:"namespace"`

	// Buckets 派发耗时直方图的桶（秒），为空时使用默认值
	Buckets []float64 `json:"buckets,omitempty" yaml:"buckets,omitempty"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "msgbus",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	var err error
	if c.Namespace != "" && !metricNamespaceRe.MatchString(c.Namespace) {
		err = multierr.Append(err, fmt.Errorf("metrics.namespace: invalid name %q", c.Namespace))
	}
	for i := 1; i < len(c.Buckets); i++ {
		if c.Buckets[i] <= c.Buckets[i-1] {
			err = multierr.Append(err, fmt.Errorf("metrics.buckets: not strictly increasing at index %d", i))
			break
		}
	}
	return err
}
