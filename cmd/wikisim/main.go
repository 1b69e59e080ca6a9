// wikisim serves a simulated wiki action API so the panel can be
// developed and demoed without a real wiki.
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

	"golang.org/x/sync/errgroup"

	"github.com/wikivigil/vigil/internal/simulator"
)

func main() {
	var addr string
	var seed int64
	var count int
	var rate time.Duration

	flag.StringVar(&addr, "addr", "127.0.0.1:8484", "listen address")
	flag.Int64Var(&seed, "seed", 42, "random seed for the change feed")
	flag.IntVar(&count, "count", 120, "number of historical changes to seed")
	flag.DurationVar(&rate, "rate", 15*time.Second, "interval between generated changes")
	flag.Parse()

	if err := run(addr, seed, count, rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(addr string, seed int64, count int, rate time.Duration) error {
	feed := simulator.NewFeed(seed, count)
	server := simulator.NewServer(addr, feed)

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting simulator: %w", err)
	}
	log.Printf("wikisim serving api.php on http://%s (%d changes seeded)", addr, feed.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)

	// Keep the feed alive so repeated polls see fresh changes.
	g.Go(func() error {
		ticker := time.NewTicker(rate)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				feed.Generate()
			}
		}
	})

	g.Go(func() error {
		select {
		case <-sigCh:
			log.Println("shutting down")
			cancel()
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	err := g.Wait()
	if stopErr := server.Stop(); stopErr != nil {
		log.Printf("shutdown: %v", stopErr)
	}
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
