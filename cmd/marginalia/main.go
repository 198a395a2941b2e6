package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"marginalia/internal/app"
	"marginalia/pkg/config"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	addrVal, modeVal, wsVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	eff, err := config.LoadEffective(cfgPath, addrVal, modeVal, wsVal, dbVal, setFlags)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
