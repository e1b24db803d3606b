package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/art-proxy/pkg/proxy"
	"github.com/NethermindEth/art-proxy/pkg/proxy/debug"
	"github.com/NethermindEth/art-proxy/pkg/proxy/setup"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: debug.LogLevel(),
	})))

	if !debug.IsVerboseLogs() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupResult, err := setup.Setup()
	if err != nil {
		slog.Error("failed to setup", "error", err)
		os.Exit(1)
	}

	proxyConfig, err := proxy.NewProxyConfigFromSetupResult(setupResult)
	if err != nil {
		slog.Error("failed to create proxy config", "error", err)
		os.Exit(1)
	}

	artProxy, err := proxy.NewProxy(proxyConfig)
	if err != nil {
		slog.Error("failed to create proxy", "error", err)
		os.Exit(1)
	}

	if err := artProxy.Start(ctx); err != nil {
		slog.Error("proxy stopped", "error", err)
		os.Exit(1)
	}
}
