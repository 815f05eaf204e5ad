package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"sockhello/internal/server"
	"sockhello/internal/shared/config"
	"sockhello/internal/shared/logger"
	"sockhello/internal/shared/types"
)

func main() {
	configDir := flag.String("configdir", "configs", "Path to config directory")
	flag.Parse()

	iniPath := filepath.Join(*configDir, "sockhello.ini")

	// 1. 加载配置，文件缺失时使用内置默认值
	cfg := types.DefaultConfig()
	if err := config.LoadIni(cfg, iniPath); err != nil {
		// Use standard fmt before logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: Failed to load config file '%s': %v\n", iniPath, err)
		os.Exit(1)
	}

	// 2. 初始化日志系统 (stderr)，stdout 只输出收到的内容
	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 监听、接受一个连接、读到对端关闭
	srv := server.New(cfg, os.Stdout)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Str("state", srv.State().String()).Msg("Server failed")
	}
}
