package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-msgbus"
)

// ============================================================================
//                              演示总线
// ============================================================================

// Ping 心跳
type Ping struct{ msgbus.Bus0 }

// Score 分数变化
type Score struct{ msgbus.Bus1[int] }

// Move 坐标移动
type Move struct{ msgbus.Bus2[int, int] }

// Hit 攻击：攻击者、目标、伤害
type Hit struct {
	msgbus.Bus3[string, string, int]
}

// Trade 交易：卖方、买方、数量、单价
type Trade struct {
	msgbus.Bus4[string, string, int, float64]
}

// tally 订阅者累计的结果
type tally struct {
	pings  atomic.Int64
	score  atomic.Int64
	moves  atomic.Int64
	damage atomic.Int64
	volume atomic.Int64
}

func (t *tally) String() string {
	return fmt.Sprintf("pings=%d score=%d moves=%d damage=%d volume=%d",
		t.pings.Load(), t.score.Load(), t.moves.Load(), t.damage.Load(), t.volume.Load())
}

// register 为演示总线注册工厂，严格模式下也能构造
func register(reg *msgbus.Registry) error {
	return errors.Join(
		msgbus.Register(reg, func() *Ping { return new(Ping) }),
		msgbus.Register(reg, func() *Score { return new(Score) }),
		msgbus.Register(reg, func() *Move { return new(Move) }),
		msgbus.Register(reg, func() *Hit { return new(Hit) }),
		msgbus.Register(reg, func() *Trade { return new(Trade) }),
	)
}

// subscribe 在每个演示总线上挂一个订阅者
func subscribe(reg *msgbus.Registry, t *tally) []*msgbus.Subscription {
	return []*msgbus.Subscription{
		msgbus.Get[Ping](reg).Add(func() error {
			t.pings.Add(1)
			return nil
		}),
		msgbus.Get[Score](reg).Add(func(delta int) error {
			t.score.Add(int64(delta))
			return nil
		}),
		msgbus.Get[Move](reg).Add(func(dx, dy int) error {
			t.moves.Add(int64(abs(dx) + abs(dy)))
			return nil
		}),
		msgbus.Get[Hit](reg).Add(func(_, _ string, damage int) error {
			t.damage.Add(int64(damage))
			return nil
		}),
		msgbus.Get[Trade](reg).Add(func(_, _ string, qty int, _ float64) error {
			t.volume.Add(int64(qty))
			return nil
		}),
	}
}

// publish 每个总线一个发送方，并发发送 rounds 轮
func publish(ctx context.Context, reg *msgbus.Registry, rounds int) error {
	g, ctx := errgroup.WithContext(ctx)

	send := func(fn func(i int) error) {
		g.Go(func() error {
			for i := 0; i < rounds; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}

	send(func(int) error { return msgbus.Get[Ping](reg).Send() })
	send(func(i int) error { return msgbus.Get[Score](reg).Send(i + 1) })
	send(func(i int) error { return msgbus.Get[Move](reg).Send(1, -1) })
	send(func(i int) error { return msgbus.Get[Hit](reg).Send("knight", "orc", 3) })
	send(func(i int) error { return msgbus.Get[Trade](reg).Send("alice", "bob", 2, 9.5) })

	return g.Wait()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
