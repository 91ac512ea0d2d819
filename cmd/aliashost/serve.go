package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/aliaseditor/aliasplugin"
	"github.com/BaSui01/aliaseditor/config"
	"github.com/BaSui01/aliaseditor/internal/metrics"
	"github.com/BaSui01/aliaseditor/internal/server"
	"github.com/BaSui01/aliaseditor/internal/telemetry"
	"github.com/BaSui01/aliaseditor/internal/watch"
	"github.com/BaSui01/aliaseditor/types"
)

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting AliasEditor host",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := newHost(cfg, logger)
	runErr := h.run(ctx, fs.Args())

	if err := providers.Shutdown(context.Background()); err != nil {
		logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
	logger.Info("AliasEditor host stopped")
	return runErr
}

// host 组合插件、产物监听器与 HTTP 服务器
type host struct {
	cfg     *config.Config
	logger  *zap.Logger
	plugin  *aliasplugin.Plugin
	watcher *watch.Watcher
	server  *server.Manager
	rc      types.RenderContext

	// watched 把监听器使用的绝对路径映射回实例绑定的路径
	watched map[string]string
}

func newHost(cfg *config.Config, logger *zap.Logger) *host {
	opts := []aliasplugin.Option{
		aliasplugin.WithLogger(logger),
		aliasplugin.WithTracerProvider(otel.GetTracerProvider()),
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		opts = append(opts, aliasplugin.WithCollector(metrics.NewCollector(cfg.Metrics.Namespace, logger)))
		gatherer = prometheus.DefaultGatherer
	}

	plugin := aliasplugin.New(cfg.Plugin, opts...)
	return &host{
		cfg:     cfg,
		logger:  logger,
		plugin:  plugin,
		watcher: watch.New(watch.WithInterval(cfg.Watch.Interval), watch.WithLogger(logger)),
		server:  server.NewManager(server.NewHandler(plugin, gatherer, logger), cfg.Server, logger),
		rc:      &hostRenderContext{window: "serve"},
		watched: make(map[string]string),
	}
}

// run 打开所有路径并阻塞到 ctx 结束或服务器异常退出，随后卸载插件
func (h *host) run(ctx context.Context, paths []string) error {
	h.plugin.OnLoad(ctx)
	defer func() {
		released := h.plugin.OnUnload(context.Background())
		h.logger.Info("editors released", zap.Int("released", released))
	}()

	for _, path := range paths {
		view, inst, err := h.plugin.CreateEditor(ctx, aliasplugin.EditorID, path, h.rc)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		// 宿主不渲染面板，只保留控制句柄
		view.Release()
		if h.cfg.Watch.Enabled {
			if err := h.watch(inst.FilePath()); err != nil {
				return err
			}
		}
	}

	h.watcher.OnChange(func(evt watch.Event) {
		if evt.Op != watch.OpWrite {
			return
		}
		n, err := h.plugin.ReloadPath(ctx, h.rc, h.watched[evt.Path])
		if err != nil {
			h.logger.Warn("reload after external change failed", zap.String("path", evt.Path), zap.Error(err))
			return
		}
		h.logger.Info("reloaded after external change", zap.String("path", evt.Path), zap.Int("instances", n))
	})

	if err := h.server.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if h.cfg.Watch.Enabled {
		g.Go(func() error { return h.watcher.Run(gctx) })
	}
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-h.server.Errors():
			return fmt.Errorf("http server: %w", err)
		}
	})

	err := g.Wait()
	if shutdownErr := h.server.Shutdown(context.Background()); shutdownErr != nil {
		err = errors.Join(err, shutdownErr)
	}
	return err
}

func (h *host) watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := h.watcher.Add(abs); err != nil {
		return err
	}
	h.watched[abs] = path
	return nil
}
