package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bluewitness-api/config"
	"bluewitness-api/core/appbootstrap"
	"bluewitness-api/core/utils"
)

func main() {
	configPath := flag.String("config", os.Getenv("BW_CONFIG"), "path to YAML config file")
	showEnv := flag.Bool("env", false, "print supported environment variables and exit")
	flag.Parse()

	if *showEnv {
		fmt.Println(config.Usage())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := utils.NewLoggerWithWriter(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("starting bluewitness-api (env=%s, db=%s)", cfg.AppEnv, cfg.DBDriver)
	if err := appbootstrap.Run(ctx, cfg, logger); err != nil {
		logger.Fatalf("server: %v", err)
	}
	logger.Printf("shutdown complete")
}
