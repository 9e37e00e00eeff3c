package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-msgbus"
	"github.com/dep2p/go-msgbus/config"
	"github.com/dep2p/go-msgbus/internal/util/logger"
)

var log = logger.Logger("introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = config.DefaultIntrospectAddr

// ============================================================================
//                              配置
// ============================================================================

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:6061"
	Addr string

	// Registry 被诊断的注册表
	Registry *msgbus.Registry

	// Gatherer 可选的 Prometheus 指标源，为 nil 时不提供 /metrics
	Gatherer prometheus.Gatherer

	// Clock 可选的时钟，默认系统时钟
	Clock clock.Clock
}

// ============================================================================
//                              Server
// ============================================================================

// Server 本地自省 HTTP 服务
type Server struct {
	config Config

	// HTTP 服务器
	server   *http.Server
	listener net.Listener

	// 状态
	running   bool
	startTime time.Time

	mu sync.Mutex
}

// New 创建自省服务
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Server{
		config:    cfg,
		startTime: cfg.Clock.Now(),
	}
}

// Handler 返回服务的路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// 自省端点
	mux.HandleFunc("/debug/msgbus", s.handleIntrospect)
	mux.HandleFunc("/debug/msgbus/buses", s.handleBuses)
	mux.HandleFunc("/debug/msgbus/runtime", s.handleRuntime)

	// 指标
	if s.config.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}

	// pprof 端点
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 健康检查
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second, // pprof profile 默认采样 30s
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("introspection server exited", "error", err)
		}
	}()

	s.running = true
	s.startTime = s.config.Clock.Now()
	log.Info("introspection server started", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error("introspection server shutdown failed", "error", err)
		return err
	}

	s.running = false
	log.Info("introspection server stopped")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// ============================================================================
//                              响应结构
// ============================================================================

// IntrospectResponse 完整诊断响应
type IntrospectResponse struct {
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Registry  *RegistryInfo `json:"registry,omitempty"`
	Runtime   *RuntimeInfo  `json:"runtime,omitempty"`
}

// RegistryInfo 注册表信息
type RegistryInfo struct {
	ID     string           `json:"id"`
	Strict bool             `json:"strict"`
	Buses  []msgbus.BusInfo `json:"buses"`
}

// RuntimeInfo 运行时信息
type RuntimeInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc"`
	MemSys       uint64 `json:"mem_sys"`
	NumGC        uint32 `json:"num_gc"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := s.config.Clock.Now()
	s.writeJSON(w, IntrospectResponse{
		Timestamp: now,
		Uptime:    now.Sub(s.started()).String(),
		Registry:  s.collectRegistryInfo(),
		Runtime:   collectRuntimeInfo(),
	})
}

func (s *Server) handleBuses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info := s.collectRegistryInfo()
	if info == nil {
		http.Error(w, "Registry not available", http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, info.Buses)
}

func (s *Server) handleRuntime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, collectRuntimeInfo())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := s.config.Clock.Now()
	health := HealthResponse{
		Status:    "ok",
		Timestamp: now,
		Uptime:    now.Sub(s.started()).String(),
	}
	if s.config.Registry == nil {
		health.Status = "degraded"
	}

	s.writeJSON(w, health)
}

// ============================================================================
//                              数据收集
// ============================================================================

func (s *Server) started() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

func (s *Server) collectRegistryInfo() *RegistryInfo {
	reg := s.config.Registry
	if reg == nil {
		return nil
	}

	return &RegistryInfo{
		ID:     reg.ID(),
		Strict: reg.Strict(),
		Buses:  reg.Snapshot(),
	}
}

func collectRuntimeInfo() *RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &RuntimeInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		log.Error("JSON encoding failed", "error", err)
	}
}
