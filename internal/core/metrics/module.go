package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	"github.com/dep2p/go-msgbus"
	"github.com/dep2p/go-msgbus/config"
	"github.com/dep2p/go-msgbus/internal/util/logger"
)

var log = logger.Logger("metrics")

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Result Metrics 模块输出
//
// 指标禁用时所有字段为 nil。
type Result struct {
	fx.Out

	Collector *Collector
	Observer  msgbus.Observer
	Gatherer  prometheus.Gatherer
}

// Module 返回 metrics 的 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideCollector),
	)
}

// ProvideCollector 根据配置创建 Collector
//
// 除总线指标外还注册 Go 运行时与进程指标。
func ProvideCollector(p Params) (Result, error) {
	cfg := config.DefaultMetricsConfig()
	if p.Config != nil {
		cfg = p.Config.Metrics
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if !cfg.Enabled {
		log.Debug("metrics disabled")
		return Result{}, nil
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return Result{}, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return Result{}, err
	}

	c := NewCollector(cfg, reg)
	log.Debug("metrics enabled", "namespace", cfg.Namespace)
	return Result{
		Collector: c,
		Observer:  c,
		Gatherer:  reg,
	}, nil
}
