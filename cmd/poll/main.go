// Command poll prints the latest price of a symbol, or a full prediction with
// -predict, every few seconds until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AutoTrade/internal/di"
	"AutoTrade/internal/usecase"
	"AutoTrade/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "TATAGOLD.NS", "symbol to poll")
	refresh := flag.Float64("refresh", 5, "refresh interval in seconds (min 0.5)")
	predict := flag.Bool("predict", false, "run a full prediction on every tick")
	inPlace := flag.Bool("inplace", true, "rewrite a single terminal line")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if !*predict && cfg.Data.Source == "mock" {
		log.Fatalf("data.source is mock; use -predict")
	}
	// keep the terminal for quotes
	cfg.Log.Output = "stderr"
	cfg.Log.Level = "error"
	cfg.Metrics.Enabled = false

	svc, cleanup, err := di.InitializePredictionService(cfg)
	if err != nil {
		log.Fatalf("init failed: %v", err)
	}
	defer cleanup()

	acq := svc.Acquirer()
	fetch := usecase.QuoteFromPredictions(svc)
	if !*predict {
		fetch = usecase.QuoteFromSource(acq.Source(), acq.Normalize)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(*refresh * float64(time.Second))
	p := usecase.NewPoller(fetch, *symbol, interval, os.Stdout, usecase.WithInPlace(*inPlace))
	fmt.Printf("Polling %s every %s (Ctrl+C to stop)\n", acq.Normalize(*symbol), p.Interval())

	_ = p.Run(ctx)
	fmt.Println("\nStopped.")
}
