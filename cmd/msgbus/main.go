// Package main 提供 msgbus 演示命令行
//
// 启动一个包含注册表、指标和自省服务的 Fx 应用，在五种参数个数的演示总线上
// 并发发送消息并输出注册表快照。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-msgbus"
	"github.com/dep2p/go-msgbus/config"
	"github.com/dep2p/go-msgbus/internal/core/metrics"
	"github.com/dep2p/go-msgbus/internal/debug/introspect"
	"github.com/dep2p/go-msgbus/internal/util/logger"
)

var log = logger.Logger("cmd")

var (
	configFile  = flag.String("config", "", "配置文件路径 (.json/.yaml)")
	preset      = flag.String("preset", "", "预设配置 (development/production)")
	logLevel    = flag.String("log-level", "", "日志级别，如 registry=debug,info")
	rounds      = flag.Int("rounds", 10, "每个总线发送的消息数")
	serve       = flag.Bool("serve", false, "启动自省服务并等待退出信号")
	fxLog       = flag.Bool("fx-log", false, "输出 Fx 事件日志")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(msgbus.VersionInfo())
		return
	}

	opts := runOptions{
		configFile: *configFile,
		preset:     *preset,
		logLevel:   *logLevel,
		rounds:     *rounds,
		serve:      *serve,
		fxLog:      *fxLog,
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// runOptions 命令行参数
type runOptions struct {
	configFile string
	preset     string
	logLevel   string
	rounds     int
	serve      bool
	fxLog      bool
}

func run(ctx context.Context, opts runOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("日志配置错误: %w", err)
	}

	var (
		reg    *msgbus.Registry
		server *introspect.Server
	)
	app := fx.New(
		fx.Supply(cfg),
		metrics.Module(),
		msgbus.Module(),
		introspect.Module(),
		fx.Populate(&reg, &server),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: fxZapLogger(opts.fxLog)}
		}),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			log.Error("stop failed", "error", err)
		}
	}()

	fmt.Fprintf(out, "📦 %s\n", msgbus.VersionInfo())
	log.Info("demo starting", "registry", reg.ID(), "rounds", opts.rounds)

	if err := register(reg); err != nil {
		return err
	}
	t := &tally{}
	subs := subscribe(reg, t)
	if err := publish(ctx, reg, opts.rounds); err != nil {
		return fmt.Errorf("发送失败: %w", err)
	}
	fmt.Fprintln(out, t)
	printSnapshot(out, reg)

	if opts.serve && server != nil {
		fmt.Fprintf(out, "自省服务: http://%s/debug/msgbus ，按 Ctrl+C 退出\n", server.Addr())
		waitForSignal(ctx)
	}

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

// loadConfig 按 配置文件 → 预设 → 命令行 的顺序合成配置
func loadConfig(opts runOptions) (*config.Config, error) {
	cfg := config.NewConfig()
	if opts.configFile != "" {
		loaded, err := config.LoadFile(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.preset != "" {
		if err := config.ApplyPreset(cfg, opts.preset); err != nil {
			return nil, err
		}
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.serve {
		cfg.Introspect.Enabled = true
	}
	if opts.rounds < 0 {
		return nil, errors.New("rounds must not be negative")
	}
	return cfg, cfg.Validate()
}

func fxZapLogger(enabled bool) *zap.Logger {
	if !enabled {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func printSnapshot(out io.Writer, reg *msgbus.Registry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUS\tARITY\tSUBSCRIBERS\tCREATED")
	for _, info := range reg.Snapshot() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", info.Name, info.Arity, info.Subscribers, info.CreatedAt.Format(time.RFC3339))
	}
	_ = w.Flush()
}

func waitForSignal(ctx context.Context) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case <-signals:
	case <-ctx.Done():
	}
}
