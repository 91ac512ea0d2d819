// =============================================================================
// AliasEditor 演示宿主入口
// =============================================================================
// 以宿主身份加载别名编辑器插件，打开 alias 产物并驱动其生命周期
//
// 使用方法:
//
//	aliashost open ./MyAlias.alias                    # 打开并打印实例信息
//	aliashost open --target u32 ./MyAlias.alias       # 修改目标类型并保存
//	aliashost serve --config config.yaml ./A.alias    # 常驻运行，暴露 /health 与 /metrics
//	aliashost health --addr http://localhost:9091     # 健康检查
//	aliashost version                                 # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/aliaseditor/aliasplugin"
	"github.com/BaSui01/aliaseditor/config"
	"github.com/BaSui01/aliaseditor/editor/alias"
	"github.com/BaSui01/aliaseditor/internal/telemetry"
	"github.com/BaSui01/aliaseditor/internal/tlsutil"
	"github.com/BaSui01/aliaseditor/types"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// hostRenderContext 是演示宿主的渲染上下文，插件只负责透传
type hostRenderContext struct {
	window string
}

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "open":
		err = runOpen(os.Args[2:], os.Stdout)
	case "serve":
		err = runServe(os.Args[2:])
	case "health":
		err = runHealthCheck(os.Args[2:], os.Stdout)
	case "version":
		printVersion(os.Stdout)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// 📂 open 命令
// =============================================================================

type openOptions struct {
	configPath string
	name       string
	target     string
	paths      []string
}

func parseOpenFlags(args []string) (openOptions, error) {
	var opts openOptions
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.name, "name", "", "Rename every opened alias")
	fs.StringVar(&opts.target, "target", "", "Retarget every opened alias")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.paths = fs.Args()
	if len(opts.paths) == 0 {
		return opts, fmt.Errorf("open: at least one path is required")
	}
	return opts, nil
}

func runOpen(args []string, out io.Writer) error {
	opts, err := parseOpenFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	plugin := aliasplugin.New(cfg.Plugin, aliasplugin.WithLogger(logger))
	return openAndEdit(context.Background(), plugin, opts, out)
}

// editorPlugin 是 open 命令驱动插件所需的最小接口
type editorPlugin interface {
	OnLoad(ctx context.Context)
	OnUnload(ctx context.Context) int
	CreateEditor(ctx context.Context, editorID types.EditorID, filePath string, rc types.RenderContext) (types.DisplayView, types.EditorInstance, error)
	SaveAll(ctx context.Context, rc types.RenderContext) (int, error)
}

// openAndEdit 打开所有路径，按需修改并保存，最后卸载插件
func openAndEdit(ctx context.Context, plugin editorPlugin, opts openOptions, out io.Writer) error {
	rc := &hostRenderContext{window: "cli"}
	plugin.OnLoad(ctx)

	for _, path := range opts.paths {
		view, inst, err := plugin.CreateEditor(ctx, aliasplugin.EditorID, path, rc)
		if err != nil {
			plugin.OnUnload(ctx)
			return fmt.Errorf("open %s: %w", path, err)
		}

		if ed, ok := view.Panel().(*alias.Editor); ok {
			if opts.name != "" {
				ed.SetName(opts.name)
			}
			if opts.target != "" {
				ed.SetTarget(opts.target)
			}
		}

		identity := "?"
		if h, ok := inst.(*aliasplugin.InstanceHandle); ok {
			identity = h.Identity().String()
		}
		fmt.Fprintf(out, "opened #%s %s title=%q dirty=%t\n",
			identity, inst.FilePath(), view.Panel().Title(), inst.IsDirty())
		view.Release()
	}

	saved, saveErr := plugin.SaveAll(ctx, rc)
	fmt.Fprintf(out, "saved %d\n", saved)

	released := plugin.OnUnload(ctx)
	fmt.Fprintf(out, "released %d\n", released)
	return saveErr
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	addr := fs.String("addr", "http://localhost:9091", "Host status address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := tlsutil.SecureHTTPClient(5 * time.Second)
	resp, err := client.Get(strings.TrimRight(*addr, "/") + "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	fmt.Fprintln(out, "OK")
	return nil
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(out io.Writer) {
	v := Version
	if v == "dev" {
		v = telemetry.Version()
	}
	fmt.Fprintf(out, "AliasEditor host %s (plugin %s)\n", v, aliasplugin.Version)
	fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `AliasEditor Host - loads the alias editor plugin

Usage:
  aliashost <command> [options] [paths...]

Commands:
  open      Open alias artifacts, optionally edit and save them, then unload
  serve     Keep editors open and expose /health, /instances and /metrics
  health    Check a running host
  version   Show version information
  help      Show this help message

Options for 'open':
  --config <path>   Path to configuration file (YAML)
  --name <name>     Rename every opened alias
  --target <type>   Retarget every opened alias

Options for 'serve':
  --config <path>   Path to configuration file (YAML)

Options for 'health':
  --addr <url>      Host status address (default http://localhost:9091)

Examples:
  aliashost open ./MyAlias.alias
  aliashost open --target u32 ./MyAlias.alias/alias.json
  aliashost serve --config /etc/aliaseditor/config.yaml ./MyAlias.alias
  aliashost health --addr https://localhost:9091
  aliashost version`)
}

// =============================================================================
// 🔧 配置与日志初始化
// =============================================================================

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
	}
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	var opts []zap.Option
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	logger, err := zapConfig.Build(opts...)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
