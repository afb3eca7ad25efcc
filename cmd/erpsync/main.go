package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appintegration "github.com/erp/erpsync/internal/application/integration"
	"github.com/erp/erpsync/internal/bootstrap"
	"github.com/erp/erpsync/internal/infrastructure/config"
	"github.com/erp/erpsync/internal/infrastructure/logger"
	"github.com/erp/erpsync/internal/interfaces/http/dto"
)

func main() {
	var company string
	flag.StringVar(&company, "company", "", "Company slug or id (required for inbound and outbound)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		printUsage()
		os.Exit(2)
	}
	command := args[0]
	if command != "all" && company == "" {
		fmt.Fprintln(os.Stderr, "-company is required")
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	baseLog, err := logger.New(logger.FromSettings(cfg.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, baseLog, command, company)
	stop()
	_ = logger.Sync(baseLog)
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, baseLog *zap.Logger, command, company string) int {
	app, err := bootstrap.New(ctx, cfg, baseLog)
	if err != nil {
		baseLog.Error("Failed to initialize application", zap.Error(err))
		return 1
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			app.Logger.Error("Error closing application", zap.Error(err))
		}
	}()

	var results []*appintegration.BatchResult
	switch command {
	case "inbound":
		res, runErr := app.Service.SyncInbound(ctx, company)
		results, err = appendResult(results, res), runErr
	case "outbound":
		res, runErr := app.Service.SyncOutbound(ctx, company)
		results, err = appendResult(results, res), runErr
	case "all":
		results, err = app.Service.SyncAll(ctx)
	default:
		printUsage()
		return 2
	}

	out := make([]dto.SyncRunResponse, 0, len(results))
	for _, res := range results {
		out = append(out, dto.NewSyncRunResponse(res))
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(out); encErr != nil {
		app.Logger.Error("Failed to write results", zap.Error(encErr))
	}

	if err != nil {
		app.Logger.Error("Sync failed", zap.String("command", command), zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
	for _, res := range results {
		if res.Failed() > 0 {
			return 3
		}
	}
	return 0
}

func appendResult(results []*appintegration.BatchResult, res *appintegration.BatchResult) []*appintegration.BatchResult {
	if res == nil {
		return results
	}
	return append(results, res)
}

func printUsage() {
	fmt.Println(`ERP Sync one-shot runner

Usage:
  erpsync [-company <slug|id>] <inbound|outbound|all>

Commands:
  inbound    Pull remote records, then images, for one company
  outbound   Push unlinked local records for one company
  all        Inbound then outbound for every company with a connection

Exit codes:
  0  success
  1  run failed
  2  usage error
  3  finished with failed records`)
}
