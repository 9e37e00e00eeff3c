package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-msgbus"
	"github.com/dep2p/go-msgbus/config"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Provides 测试模块提供的类型
func TestModule_Provides(t *testing.T) {
	var (
		collector *Collector
		observer  msgbus.Observer
		gatherer  prometheus.Gatherer
	)

	app := fxtest.New(t,
		Module(),
		fx.Populate(&collector, &observer, &gatherer),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, collector)
	assert.Same(t, collector, observer)

	families, err := gatherer.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families, "runtime collectors are registered")
}

// TestModule_WiresRegistry 注册表自动使用 Collector
func TestModule_WiresRegistry(t *testing.T) {
	var (
		collector *Collector
		reg       *msgbus.Registry
	)

	app := fxtest.New(t,
		Module(),
		msgbus.Module(),
		fx.Populate(&collector, &reg),
	)
	defer app.RequireStart().RequireStop()

	msgbus.Get[Ping](reg)
	families, err := collector.Registry().Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "msgbus_buses" {
			found = true
			assert.Equal(t, 1.0, f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}

// TestModule_Disabled 禁用时不提供观察者
func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false

	var (
		collector *Collector
		reg       *msgbus.Registry
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		msgbus.Module(),
		fx.Populate(&collector, &reg),
	)
	defer app.RequireStart().RequireStop()

	assert.Nil(t, collector)
	assert.NotNil(t, msgbus.Get[Ping](reg))
}
