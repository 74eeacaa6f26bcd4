package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/assets"
	"github.com/ByLCY/mockup/config"
	"github.com/ByLCY/mockup/export"
	"github.com/ByLCY/mockup/geom"
	"github.com/ByLCY/mockup/mockup"
	"github.com/ByLCY/mockup/renderer"
	canvasrenderer "github.com/ByLCY/mockup/renderer/canvas"
	"github.com/ByLCY/mockup/scene"
	"github.com/ByLCY/mockup/server"
	"github.com/ByLCY/mockup/stores"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("读取配置失败: %v", err)
	}

	input := flag.String("in", "examples/demo.mockup", "场景文件路径")
	output := flag.String("out", "output/mockup.png", "输出文件路径")
	format := flag.String("format", "", "输出格式 png/svg/pdf，默认取输出文件扩展名")
	debug := flag.String("debug", "", "快照调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到场景的 JSON 数据")
	serve := flag.Bool("serve", false, "启动 HTTP 编辑服务")
	listen := flag.String("listen", cfg.ListenAddr, "HTTP 监听地址")
	logLevel := flag.String("loglevel", cfg.LogLevel, "日志级别 (debug, info, warn, error)")
	pageName := flag.String("page", cfg.PDFPage.Name, "PDF 页面格式 (a4, letter)")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	page, err := geom.ParsePage(*pageName)
	if err != nil {
		logrus.Fatal(err)
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Page: page})

	if *serve {
		cfg.ListenAddr = *listen
		// HTTP 客户端提交的地址不可信：本地文件只能来自 ASSET_DIR
		loader := assets.New(assets.Options{
			BaseDir:     cfg.AssetDir,
			Confine:     true,
			Timeout:     cfg.AssetFetchTimeout,
			AllowRemote: cfg.AllowRemoteAssets,
		})
		if err := runServer(cfg, loader, r); err != nil {
			logrus.Fatal(err)
		}
		return
	}

	loader := assets.New(assets.Options{
		BaseDir:     filepath.Dir(*input),
		Timeout:     cfg.AssetFetchTimeout,
		AllowRemote: cfg.AllowRemoteAssets,
	})

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			logrus.Fatalf("解析 data JSON 失败: %v", err)
		}
	}
	f := *format
	if f == "" {
		f = strings.TrimPrefix(filepath.Ext(*output), ".")
	}
	out, err := renderer.ParseFormat(f)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := run(*input, *output, *debug, out, inputData, loader, r); err != nil {
		logrus.Fatalf("生成文件失败: %v", err)
	}
	fmt.Printf("已生成 %s：%s\n", strings.ToUpper(string(out)), *output)
}

// run 串联解析、应用与导出。
func run(inputPath, outputPath, debugPath string, format renderer.Format, data any, loader assets.Loader, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开场景文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	sc, err := scene.Parse(file)
	if err != nil {
		return fmt.Errorf("解析场景失败: %w", err)
	}
	store, err := sc.Build(data)
	if err != nil {
		return fmt.Errorf("应用场景失败: %w", err)
	}
	snap := store.Snapshot()

	if debugPath != "" {
		if err := writeDebug(&snap, debugPath); err != nil {
			return err
		}
	}

	pipeline := export.New(export.Options{Loader: loader, Renderer: r, Session: "cli"})
	artifact, err := pipeline.Export(context.Background(), snap, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(outputPath, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

func writeDebug(snap *mockup.Snapshot, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := mockup.WriteDebugJSON(snap, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func runServer(cfg config.Config, loader assets.Loader, r renderer.Renderer) error {
	store, err := stores.GetStore(cfg)
	if err != nil {
		return err
	}
	srv := server.New(server.Options{
		Artifacts:     store,
		Loader:        loader,
		Renderer:      r,
		ExportTimeout: 2 * cfg.AssetFetchTimeout,
	})
	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Router()}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go stores.RunSweeper(sweepCtx, store, cfg.ArtifactTTL, 0)

	logrus.WithField("addr", cfg.ListenAddr).Info("starting server")
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	waitForShutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func waitForShutdown() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-signals
	logrus.WithField("signal", sig.String()).Info("shutting down")
}
