// cmd/proxy/main.go
package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"relaycore/internal/command"
	"relaycore/internal/config"
	"relaycore/internal/event"
	"relaycore/internal/storage"
	"relaycore/internal/version"
	"relaycore/internal/worker"
)

func main() {
	log.Printf("[INFO] Starting %v...", version.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New()

	store, err := storage.New(ctx, cfg.HistoryPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	bus := event.NewBus(cfg.EventBufSize)
	notifier := event.NotifierFunc(func(_ context.Context, source any, line string) (event.Result, error) {
		name := "unknown"
		if s, ok := source.(command.Source); ok {
			name = s.Name()
		}
		bus.Publish(event.Event{Type: event.TypeCommandExecuted, Source: name, Line: line})
		return event.Result{Allowed: true}, nil
	})

	pool := worker.NewPool(cfg.Workers)
	defer pool.Close()

	mgr := command.NewManager(notifier, pool)
	mgr.UseRateLimiter(command.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst))
	mgr.OnExecuted(func(source command.Source, alias, line string) {
		if e := store.RecordCommand(source.Name(), alias, line); e != nil {
			log.Printf("[WARN] Failed to record command %q: %v", line, e)
		}
	})

	shutdown := command.ApplyMiddlewares(command.NewShutdownCommand(cancel), command.WithExecutionLog())
	if err := mgr.Register(shutdown, "shutdown", "end"); err != nil {
		log.Fatal(err)
	}

	// Console loop. Stays blocked on stdin after shutdown, so it runs
	// detached; the process exits once the errgroup drains.
	go func() {
		console := command.ConsoleSource{}
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			line = strings.TrimPrefix(line, "/")
			if line == "" {
				continue
			}
			handled, err := mgr.Execute(ctx, console, line)
			if err != nil {
				log.Printf("[ERROR] %v", err)
				continue
			}
			if !handled {
				console.SendMessage("Unknown command. Available: " + strings.Join(mgr.RegisteredAliases(), ", "))
			}
		}
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case evt := <-bus.Events():
				log.Printf("[INFO] Command from %s: %s", evt.Source, evt.Line)
			}
		}
	})

	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-gctx.Done():
		case s := <-sig:
			log.Printf("[INFO] Received signal: %v", s)
			cancel()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("[ERROR] %v", err)
	}
	log.Printf("[INFO] %v stopped.", version.AppName)
}
