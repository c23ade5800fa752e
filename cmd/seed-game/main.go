package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/huckstats/huck/internal/simulate"
	"github.com/huckstats/huck/pkg/logger"
)

// Default configuration constants.
const (
	defaultPoints     = 15
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		points   = flag.Int("points", defaultPoints, "Number of points to simulate")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		tourney  = flag.String("tournament", "Seeded Scrimmage", "Tournament name for the seeded game")
		opponent = flag.String("opponent", "Practice Squad", "Opponent name for the seeded game")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:  *baseURL,
		Points:   *points,
		Workers:  *workers,
		Timeout:  *timeout,
		Verbose:  *verbose,
		Tourney:  *tourney,
		Opponent: *opponent,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
