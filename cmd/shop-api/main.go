package main

import (
	"flag"
	"fmt"

	"github.com/MechanicWorks/MechanicWorks/internal/app"
	"github.com/MechanicWorks/MechanicWorks/internal/common/config"
	"github.com/MechanicWorks/MechanicWorks/internal/common/logger"
	"github.com/MechanicWorks/MechanicWorks/internal/common/server"
	"github.com/MechanicWorks/MechanicWorks/internal/common/tracing"
)

var (
	configPath      = flag.String("config", "configs/shop-api.json", "配置文件路径")
	consulConfigKey = flag.String("consul-config-key", "", "从 Consul KV 读取配置的 key（设置后优先于本地文件）")
	consulHost      = flag.String("consul-host", "localhost", "Consul 地址（仅 -consul-config-key 时使用）")
	consulPort      = flag.Int("consul-port", 8500, "Consul 端口（仅 -consul-config-key 时使用）")
)

func main() {
	flag.Parse()

	// 加载配置：优先 Consul KV，其次本地文件
	var (
		cfg *config.Config
		err error
	)
	if *consulConfigKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulConfigKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 组装应用：打开数据库、建表、挂载路由
	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if err := server.Run(cfg, log, a.Engine); err != nil {
		log.Fatalf("shop-api exited with error: %v", err)
	}
}
