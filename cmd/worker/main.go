package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"doc-quiz/internal/app"
	"doc-quiz/internal/httputil"
	"doc-quiz/internal/queue"
)

func main() {
	deps, err := app.Build("worker", true)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps.Log.Info("worker starting")
	if err := run(ctx, deps); err != nil {
		deps.Log.Error("worker stopped", "err", err)
		os.Exit(1)
	}
}

// run serves generate tasks and the health endpoint until ctx is done or
// either fails.
func run(ctx context.Context, deps app.Deps) error {
	if deps.Queue == nil {
		return errors.New("worker requires PIPELINE_MODE=nats and QUEUE_URL")
	}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeGenerate, queue.GenerateHandler(deps.Runner))
	})
	g.Go(func() error {
		return httputil.ServeHealth(ctx, fmt.Sprintf(":%d", deps.Config.WorkerHealthPort), deps.Log)
	})

	return g.Wait()
}
