// main.go

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelac/internal/app"
	"hotelac/internal/logger"
)

func main() {
	a := app.NewApp()
	if err := a.Initialize(); err != nil {
		logger.Error("初始化失败: %v", err)
		os.Exit(1)
	}
	if err := a.Start(); err != nil {
		logger.Error("启动失败: %v", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("收到退出信号, 开始关闭")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Stop(ctx); err != nil {
		logger.Error("关闭失败: %v", err)
		os.Exit(1)
	}
}
