package msgbus

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-msgbus/config"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_ProvidesRegistry 测试模块加载
func TestModule_ProvidesRegistry(t *testing.T) {
	var reg *Registry

	app := fxtest.New(t,
		Module(),
		fx.Populate(&reg),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, reg)
	assert.False(t, reg.Strict())
	assert.NotEmpty(t, reg.ID())
}

// TestModule_SharedAcrossComponents 不同组件拿到同一个注册表
func TestModule_SharedAcrossComponents(t *testing.T) {
	got := 0

	app := fxtest.New(t,
		Module(),
		fx.Invoke(func(reg *Registry) {
			Get[Score](reg).Add(func(v int) error { got = v; return nil })
		}),
		fx.Invoke(func(reg *Registry) error {
			return Get[Score](reg).Send(11)
		}),
	)
	defer app.RequireStart().RequireStop()

	assert.Equal(t, 11, got)
}

// TestModule_UsesConfig 配置开启严格模式
func TestModule_UsesConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Registry.Strict = true

	var reg *Registry
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&reg),
	)
	defer app.RequireStart().RequireStop()

	assert.True(t, reg.Strict())
	_, err := reg.Lookup(reflect.TypeOf((*Ping)(nil)).Elem())
	assert.ErrorIs(t, err, ErrNotRegistered)
}

// TestModule_OptionsOverrideConfig 显式选项优先于配置
func TestModule_OptionsOverrideConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Registry.Strict = true

	var reg *Registry
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(WithStrict(false)),
		fx.Populate(&reg),
	)
	defer app.RequireStart().RequireStop()

	assert.False(t, reg.Strict())
}

// TestModule_InjectsObserver 注入的观察者收到事件
func TestModule_InjectsObserver(t *testing.T) {
	obs := newRecordingObserver()

	var reg *Registry
	app := fxtest.New(t,
		fx.Provide(func() Observer { return obs }),
		Module(),
		fx.Populate(&reg),
	)
	defer app.RequireStart().RequireStop()

	Get[Hit](reg).Add(func(string, string, int) error { return nil })
	require.NoError(t, Get[Hit](reg).Send("a", "b", 1))

	assert.Equal(t, 3, obs.created["msgbus.Hit"])
	assert.Equal(t, 1, obs.subscribers["msgbus.Hit"])
	assert.Len(t, obs.dispatches, 1)
}
