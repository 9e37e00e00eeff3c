package msgbus

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver 记录观察者回调
type recordingObserver struct {
	mu          sync.Mutex
	created     map[string]int
	subscribers map[string]int
	dispatches  []dispatchRecord
}

type dispatchRecord struct {
	name      string
	delivered int
	elapsed   time.Duration
	err       error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		created:     make(map[string]int),
		subscribers: make(map[string]int),
	}
}

func (o *recordingObserver) BusCreated(name string, arity int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created[name] = arity
}

func (o *recordingObserver) SubscribersChanged(name string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subscribers[name] = n
}

func (o *recordingObserver) Dispatched(name string, delivered int, elapsed time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dispatches = append(o.dispatches, dispatchRecord{name, delivered, elapsed, err})
}

// ============================================================================
// 单例语义
// ============================================================================

func TestRegistry_SameTypeSameInstance(t *testing.T) {
	reg := NewRegistry()

	first := Get[Ping](reg)
	second := Get[Ping](reg)
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_DistinctTypesDistinctInstances(t *testing.T) {
	reg := NewRegistry()

	// 两个结构相同的总线类型也是不同的条目
	type Alarm struct{ Bus0 }

	ping := Get[Ping](reg)
	alarm := Get[Alarm](reg)
	ping.Add(func() error { return nil })

	assert.Equal(t, 1, ping.Len())
	assert.Equal(t, 0, alarm.Len())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_IndependentRegistries(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	assert.NotSame(t, Get[Ping](a), Get[Ping](b))
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRegistry_SharedStateAcrossCallers(t *testing.T) {
	reg := NewRegistry()
	got := 0

	// 订阅方与发送方互不持有对方引用
	subscriber := func(r *Registry) {
		Get[Score](r).Add(func(v int) error { got += v; return nil })
	}
	publisher := func(r *Registry) error {
		return Get[Score](r).Send(5)
	}

	subscriber(reg)
	require.NoError(t, publisher(reg))
	require.NoError(t, publisher(reg))
	assert.Equal(t, 10, got)
}

// ============================================================================
// Lookup
// ============================================================================

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry()

	bus, err := reg.Lookup(reflect.TypeOf((*Score)(nil)).Elem())
	require.NoError(t, err)
	assert.Same(t, Get[Score](reg), bus)

	byPtr, err := reg.Lookup(reflect.TypeOf((**Score)(nil)).Elem())
	require.NoError(t, err)
	assert.Same(t, bus, byPtr)
	assert.Equal(t, 1, bus.Arity())
}

func TestRegistry_LookupErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Lookup(nil)
	assert.ErrorIs(t, err, ErrInvalidBusType)

	_, err = reg.Lookup(reflect.TypeOf((*int)(nil)).Elem())
	assert.ErrorIs(t, err, ErrNotMessageBus)

	type notABus struct{ Value int }
	_, err = reg.Lookup(reflect.TypeOf((*notABus)(nil)).Elem())
	assert.ErrorIs(t, err, ErrNotMessageBus)

	assert.Equal(t, 0, reg.Len())
}

// ============================================================================
// 显式工厂
// ============================================================================

func TestRegister_FactoryUsedOnce(t *testing.T) {
	reg := NewRegistry()
	calls := 0

	require.NoError(t, Register(reg, func() *Score {
		calls++
		s := new(Score)
		s.Add(func(int) error { return nil })
		return s
	}))

	assert.Equal(t, 1, Get[Score](reg).Len())
	Get[Score](reg)
	assert.Equal(t, 1, calls)
}

func TestRegister_Errors(t *testing.T) {
	reg := NewRegistry()

	assert.ErrorIs(t, Register[Ping](reg, nil), ErrNilFactory)

	require.NoError(t, Register(reg, func() *Ping { return new(Ping) }))
	assert.ErrorIs(t, Register(reg, func() *Ping { return new(Ping) }), ErrDuplicateFactory)

	Get[Score](reg)
	assert.ErrorIs(t, Register(reg, func() *Score { return new(Score) }), ErrAlreadyCreated)
}

func TestRegistry_StrictMode(t *testing.T) {
	reg := NewRegistry(WithStrict(true))
	assert.True(t, reg.Strict())

	_, err := reg.Lookup(reflect.TypeOf((*Ping)(nil)).Elem())
	assert.ErrorIs(t, err, ErrNotRegistered)

	assert.Panics(t, func() { Get[Ping](reg) })

	// 失败的查找不会占用条目，之后仍可注册
	require.NoError(t, Register(reg, func() *Ping { return new(Ping) }))
	assert.NotNil(t, Get[Ping](reg))
}

func TestRegistry_ConstructionFailure(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, Register(reg, func() *Move { return nil }))

		_, err := reg.Lookup(reflect.TypeOf((*Move)(nil)).Elem())
		assert.ErrorIs(t, err, ErrConstruction)

		assert.PanicsWithError(t, err.Error(), func() { Get[Move](reg) })
		assert.Equal(t, 0, reg.Len())
	})

	t.Run("no default construction", func(t *testing.T) {
		// 嵌入总线指针的类型零值不可用
		type abstractBus struct{ *Bus0 }
		reg := NewRegistry()

		assert.Panics(t, func() { Get[abstractBus](reg) })
		func() {
			defer func() {
				err, ok := recover().(error)
				require.True(t, ok)
				assert.ErrorIs(t, err, ErrConstruction)
			}()
			Get[abstractBus](reg)
		}()

		_, err := reg.Lookup(reflect.TypeOf((*abstractBus)(nil)).Elem())
		assert.ErrorIs(t, err, ErrConstruction)
		assert.Equal(t, 0, reg.Len())
		assert.Empty(t, reg.Snapshot())
	})

	t.Run("register after failure", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, Register(reg, func() *Move { return nil }))
		_, err := reg.Lookup(reflect.TypeOf((*Move)(nil)).Elem())
		require.ErrorIs(t, err, ErrConstruction)

		// 失败被缓存，不能再换一个工厂重试
		err = Register(reg, func() *Move { return new(Move) })
		assert.ErrorIs(t, err, ErrAlreadyCreated)
		assert.Contains(t, err.Error(), "already attempted")
		assert.Equal(t, 0, reg.Len())
	})

	t.Run("factory panic", func(t *testing.T) {
		reg := NewRegistry()
		require.NoError(t, Register(reg, func() *Hit { panic("no defaults") }))

		_, err := reg.Lookup(reflect.TypeOf((*Hit)(nil)).Elem())
		assert.ErrorIs(t, err, ErrConstruction)
		assert.Contains(t, err.Error(), "no defaults")
	})
}

func TestRegister_FactoryMayLookupOtherBuses(t *testing.T) {
	reg := NewRegistry()

	// 工厂内查找其他类型不会死锁：Trade 的订阅者转发到 Score
	require.NoError(t, Register(reg, func() *Trade {
		score := Get[Score](reg)
		tr := new(Trade)
		tr.Add(func(_, _ string, qty int, _ float64) error { return score.Send(qty) })
		return tr
	}))

	got := 0
	Get[Score](reg).Add(func(v int) error { got = v; return nil })
	require.NoError(t, Get[Trade](reg).Send("a", "b", 9, 1))
	assert.Equal(t, 9, got)
}

// ============================================================================
// 快照
// ============================================================================

func TestRegistry_SnapshotAndTypes(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	reg := NewRegistry(WithClock(mock))

	Get[Score](reg).Add(func(int) error { return nil })
	Get[Score](reg).Add(func(int) error { return nil })
	Get[Hit](reg)

	infos := reg.Snapshot()
	require.Len(t, infos, 2)
	assert.Equal(t, BusInfo{Name: "msgbus.Hit", Arity: 3, Subscribers: 0, CreatedAt: mock.Now()}, infos[0])
	assert.Equal(t, BusInfo{Name: "msgbus.Score", Arity: 1, Subscribers: 2, CreatedAt: mock.Now()}, infos[1])

	assert.Equal(t, []reflect.Type{reflect.TypeOf((*Hit)(nil)).Elem(), reflect.TypeOf((*Score)(nil)).Elem()}, reg.Types())
}

// ============================================================================
// 观察者
// ============================================================================

func TestRegistry_Observer(t *testing.T) {
	obs := newRecordingObserver()
	mock := clock.NewMock()
	reg := NewRegistry(WithObserver(obs), WithClock(mock))

	score := Get[Score](reg)
	assert.Equal(t, 1, obs.created["msgbus.Score"])

	score.Add(func(int) error {
		mock.Add(15 * time.Millisecond)
		return nil
	})
	failing := score.Add(func(int) error { return errors.New("bad") })
	assert.Equal(t, 2, obs.subscribers["msgbus.Score"])

	require.Error(t, score.Send(1))
	failing.Close()
	assert.Equal(t, 1, obs.subscribers["msgbus.Score"])
	require.NoError(t, score.Send(2))

	require.Len(t, obs.dispatches, 2)
	assert.Equal(t, 1, obs.dispatches[0].delivered)
	assert.Error(t, obs.dispatches[0].err)
	assert.Equal(t, 15*time.Millisecond, obs.dispatches[0].elapsed)
	assert.Equal(t, 1, obs.dispatches[1].delivered)
	assert.NoError(t, obs.dispatches[1].err)
}

// ============================================================================
// 默认注册表
// ============================================================================

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())

	type defaultOnlyBus struct{ Bus1[string] }
	assert.Same(t, Get[defaultOnlyBus](Default()), Of[defaultOnlyBus]())
}
