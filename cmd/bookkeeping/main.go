package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"bookkeeping/internal/cli"
	"bookkeeping/internal/gateway"
	"bookkeeping/internal/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		cli.Usage(os.Stderr)
		return 2
	}
	cmd, ok := cli.Lookup(os.Args[1])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		cli.Usage(os.Stderr)
		return 2
	}

	ctx := context.Background()
	env := &cli.Env{Out: os.Stdout, Now: time.Now}

	if !cmd.Offline {
		cfg := cli.LoadAndValidateConfig(logger)
		logger = cli.SetupLogger(cfg.LogLevel)
		logger.Debug("Configuration loaded", log.FieldOperation, log.OpStartup,
			"api_base_url", cfg.APIBaseURL,
			log.FieldBackend, cfg.StorageBackend,
			"error_policy", cfg.ErrorPolicy)

		store := cli.InitStorage(ctx, logger, cfg)
		defer func() {
			if err := store.Cleanup(); err != nil {
				logger.Warn("Failed to close storage", log.FieldOperation, log.OpShutdown, log.FieldError, err.Error())
			}
		}()

		app, err := cli.NewApp(cfg, store.Storage, logger)
		if err != nil {
			logger.Error("Failed to initialize", log.FieldError, err.Error())
			return 1
		}
		defer app.Close()
		env.App = app
	}

	if err := cmd.Run(ctx, env, os.Args[2:]); err != nil {
		return exitCode(logger, cmd.Name, err)
	}
	return 0
}

// exitCode logs err and maps it to a process status. Transport and backend
// failures have already been shown as toasts, so they are logged at debug.
func exitCode(logger *log.Logger, name string, err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintln(os.Stderr, err)
		return 2
	case errors.Is(err, gateway.ErrTransport), errors.Is(err, gateway.ErrBackendRejected):
		logger.Debug("Command failed", "command", name, log.FieldError, err.Error())
		return 1
	default:
		logger.Error("Command failed", "command", name, log.FieldError, err.Error())
		return 1
	}
}
