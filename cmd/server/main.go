package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/modop-server/internal/config"
	"github.com/taoyao-code/modop-server/internal/gateway"
	"github.com/taoyao-code/modop-server/internal/httpserver"
	"github.com/taoyao-code/modop-server/internal/logging"
	"github.com/taoyao-code/modop-server/internal/mapper"
	"github.com/taoyao-code/modop-server/internal/metrics"
	"github.com/taoyao-code/modop-server/internal/registry"
	"github.com/taoyao-code/modop-server/internal/tcpserver"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（留空则使用 configs/example.yaml 与环境变量）")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	metricsHandler := metrics.Handler(reg)
	appm := metrics.NewAppMetrics(reg)

	// 4) 装载指令集清单并构造跳转表
	var table *mapper.Mapper
	if manifest, err := registry.Load(cfg.Dispatch.Manifest); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal("load command manifest error", zap.Error(err))
		}
		// 清单缺失时以空表启动，全部槽位留给运行期注册
		log.Warn("command manifest missing, starting with empty table",
			zap.String("path", cfg.Dispatch.Manifest))
		table = mapper.New(nil, cfg.Dispatch.DefaultCapacity)
	} else {
		table = manifest.BuildMapper()
	}
	disp := gateway.NewDispatcher(table, appm)
	log.Info("dispatch table ready",
		zap.Uint("capacity", table.Capacity()),
		zap.Uint("filled", table.Filled()),
	)

	// 5) HTTP 服务
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, func() bool { return true }, disp, appm)

	// 6) TCP 网关
	tcpSrv := tcpserver.New(cfg.TCP, log)
	tcpSrv.SetConnHandler(gateway.NewConnHandler(log, appm, disp))
	tcpSrv.SetMetricsCallbacks(
		func() { appm.TCPAccepted.Inc() },
		func() { appm.TCPRejected.Inc() },
		func(n int) { appm.TCPBytesReceived.Add(float64(n)) },
	)

	// 并行启动
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	if err := tcpSrv.Start(); err != nil {
		log.Fatal("tcp server start error", zap.Error(err))
	}

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	_ = tcpSrv.Shutdown(ctx)
}
