package msgbus

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-msgbus/config"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params 注册表依赖参数
type Params struct {
	fx.In

	Config   *config.Config `optional:"true"`
	Observer Observer       `optional:"true"`
}

// Result 模块输出
type Result struct {
	fx.Out

	Registry *Registry
}

// Module 返回 Fx 模块
//
//	app := fx.New(
//	    msgbus.Module(),
//	    fx.Invoke(func(reg *msgbus.Registry) {
//	        msgbus.Get[Ping](reg).Add(onPing)
//	    }),
//	)
func Module(opts ...Option) fx.Option {
	return fx.Module("msgbus",
		fx.Provide(func(p Params) (Result, error) {
			return ProvideRegistry(p, opts...)
		}),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideRegistry 根据配置创建注册表；opts 在配置之后应用
func ProvideRegistry(p Params, opts ...Option) (Result, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Registry.Validate(); err != nil {
		return Result{}, err
	}

	all := []Option{WithStrict(cfg.Registry.Strict)}
	if p.Observer != nil {
		all = append(all, WithObserver(p.Observer))
	}
	all = append(all, opts...)

	return Result{Registry: NewRegistry(all...)}, nil
}

type lifecycleInput struct {
	fx.In

	LC       fx.Lifecycle
	Registry *Registry
}

func registerLifecycle(in lifecycleInput) {
	in.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			in.Registry.log.Info("registry started", "strict", in.Registry.Strict())
			return nil
		},
		OnStop: func(_ context.Context) error {
			// 总线随进程结束释放，这里只记录最终状态
			in.Registry.log.Info("registry stopped", "buses", in.Registry.Len())
			return nil
		},
	})
}
