package msgbus

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var messageBusType = reflect.TypeOf((*MessageBus)(nil)).Elem()

// ============================================================================
// Registry 实现
// ============================================================================

// Registry 按具体类型管理总线单例
//
// 每个总线类型在首次查找时创建一次，此后所有调用方拿到同一个实例。
// 条目在注册表生命周期内不会被删除。
type Registry struct {
	id  uuid.UUID
	cfg settings
	log *slog.Logger

	mu        sync.Mutex
	slots     map[reflect.Type]*slot
	factories map[reflect.Type]func() MessageBus
}

// slot 单个总线类型的条目
type slot struct {
	typ     reflect.Type
	factory func() MessageBus
	once    sync.Once

	// 以下字段在 once 内写入，并由 Registry.mu 保护
	bus     MessageBus
	err     error
	created time.Time
}

// BusInfo 总线快照
type BusInfo struct {
	Name        string    `json:"name"`
	Arity       int       `json:"arity"`
	Subscribers int       `json:"subscribers"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRegistry 创建注册表
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		id:        uuid.New(),
		cfg:       cfg,
		slots:     make(map[reflect.Type]*slot),
		factories: make(map[reflect.Type]func() MessageBus),
	}
	r.log = cfg.logger.With("registry", r.id.String())
	return r
}

// ID 返回注册表实例 ID
func (r *Registry) ID() string {
	return r.id.String()
}

// Strict 是否为严格模式
func (r *Registry) Strict() bool {
	return r.cfg.strict
}

// Get 返回类型 T 的总线单例，首次调用时创建
//
// 查找失败属于编程错误，Get 会 panic：构造失败时为 ErrConstruction，
// 严格模式下类型未注册工厂时为 ErrNotRegistered。需要错误返回值时使用 Lookup。
//
//	ping := msgbus.Get[Ping](reg)
//	ping.Add(func() error { ... })
func Get[T any, PT interface {
	*T
	MessageBus
}](r *Registry) PT {
	bus, err := r.resolve(reflect.TypeOf((*T)(nil)).Elem(), func() MessageBus { return PT(new(T)) })
	if err != nil {
		panic(err)
	}
	return bus.(PT)
}

// Register 为类型 T 注册显式工厂
//
// 必须在该类型首次查找之前调用；该类型一旦尝试过构造（包括构造失败），
// 再注册会返回 ErrAlreadyCreated。
func Register[T any, PT interface {
	*T
	MessageBus
}](r *Registry, factory func() PT) error {
	if factory == nil {
		return ErrNilFactory
	}
	return r.register(reflect.TypeOf((*T)(nil)).Elem(), func() MessageBus { return factory() })
}

// Lookup 按类型描述符查找总线，首次查找时创建
//
// typ 可以是 T 或 *T，两者指向同一个条目。
func (r *Registry) Lookup(typ reflect.Type) (MessageBus, error) {
	if typ == nil {
		return nil, ErrInvalidBusType
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if !reflect.PointerTo(typ).Implements(messageBusType) {
		return nil, fmt.Errorf("%w: %s", ErrNotMessageBus, typ)
	}

	return r.resolve(typ, func() MessageBus {
		return reflect.New(typ).Interface().(MessageBus)
	})
}

// Len 返回已创建的总线数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.slots {
		if s.bus != nil {
			n++
		}
	}
	return n
}

// Types 返回已创建总线的类型，按名称排序
func (r *Registry) Types() []reflect.Type {
	r.mu.Lock()
	types := make([]reflect.Type, 0, len(r.slots))
	for typ, s := range r.slots {
		if s.bus != nil {
			types = append(types, typ)
		}
	}
	r.mu.Unlock()

	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}

// Snapshot 返回所有已创建总线的快照，按名称排序
func (r *Registry) Snapshot() []BusInfo {
	r.mu.Lock()
	infos := make([]BusInfo, 0, len(r.slots))
	buses := make([]MessageBus, 0, len(r.slots))
	for typ, s := range r.slots {
		if s.bus == nil {
			continue
		}
		infos = append(infos, BusInfo{
			Name:      typeName(typ),
			Arity:     s.bus.Arity(),
			CreatedAt: s.created,
		})
		buses = append(buses, s.bus)
	}
	r.mu.Unlock()

	// 订阅者数量在 Registry.mu 之外读取，避免与总线锁嵌套
	for i, bus := range buses {
		infos[i].Subscribers = bus.Len()
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// ============================================================================
// 内部方法
// ============================================================================

func (r *Registry) register(typ reflect.Type, factory func() MessageBus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[typ]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyCreated, typ)
	}
	if _, ok := r.factories[typ]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFactory, typ)
	}
	r.factories[typ] = factory

	r.log.Debug("factory registered", "bus", typeName(typ))
	return nil
}

// resolve 返回 typ 的条目，必要时创建；fallback 为未注册工厂时的默认构造
func (r *Registry) resolve(typ reflect.Type, fallback func() MessageBus) (MessageBus, error) {
	r.mu.Lock()
	s, ok := r.slots[typ]
	if !ok {
		factory, registered := r.factories[typ]
		if !registered {
			if r.cfg.strict {
				r.mu.Unlock()
				return nil, fmt.Errorf("%w: %s", ErrNotRegistered, typ)
			}
			factory = fallback
		}
		s = &slot{typ: typ, factory: factory}
		r.slots[typ] = s
	}
	r.mu.Unlock()

	// 构造在 Registry.mu 之外进行，工厂内可以查找其他总线类型
	s.once.Do(func() { r.construct(s) })
	return s.bus, s.err
}

func (r *Registry) construct(s *slot) {
	bus, err := r.build(s)

	r.mu.Lock()
	s.bus, s.err = bus, err
	if err == nil {
		s.created = r.cfg.clock.Now()
	}
	r.mu.Unlock()

	name := typeName(s.typ)
	if err != nil {
		r.log.Error("bus construction failed", "bus", name, "err", err)
		return
	}

	r.log.Debug("bus created", "bus", name, "arity", bus.Arity())
	if r.cfg.observer != nil {
		r.cfg.observer.BusCreated(name, bus.Arity())
	}
}

func (r *Registry) build(s *slot) (bus MessageBus, err error) {
	defer func() {
		if p := recover(); p != nil {
			bus, err = nil, fmt.Errorf("%w: %s: %v", ErrConstruction, s.typ, p)
		}
	}()

	bus = s.factory()
	if isNilBus(bus) {
		return nil, fmt.Errorf("%w: %s: factory returned nil", ErrConstruction, s.typ)
	}

	bus.attach(&busMeta{
		name:     typeName(s.typ),
		arity:    bus.Arity(),
		observer: r.cfg.observer,
		clock:    r.cfg.clock,
		log:      r.log,
	})
	return bus, nil
}

func typeName(typ reflect.Type) string {
	return typ.String()
}
