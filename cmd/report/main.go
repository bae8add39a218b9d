// Command report serves a backtest results tree over HTTP: the run
// index, statistics as JSON and the rendered equity charts.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/report"
)

func main() {
	cmd := &cli.Command{
		Name:  "report",
		Usage: "Serve backtest results over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Results root folder to serve",
				Value:   "results",
			},
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address",
				Value:   "127.0.0.1:8750",
			},
		},
		Action: serveAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	logInstance, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logInstance.Sync() }()

	root := cmd.String("results")

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("results folder %s does not exist", root)
	}

	server := report.NewServer(root, logInstance)
	if err := server.Start(cmd.String("addr")); err != nil {
		return err
	}

	fmt.Printf("Serving %s on http://%s\n", root, server.Addr())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
