package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var onlyOneSignalHandler = make(chan struct{})

// SetupSignalHandler 返回绑定退出信号的context
// 第一次收到 SIGINT/SIGTERM 时取消context，第二次直接退出进程
func SetupSignalHandler() context.Context {
	close(onlyOneSignalHandler) // 第二次调用会panic

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()

	return ctx
}
