package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/config"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/app"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/dal"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/server"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/version"
)

var logger = diag.CreateLogger()

var cliArgs struct {
	port  int
	setup bool
}

func init() {
	flag.IntVar(&cliArgs.port, "port", 0, "Port to listen on. Taken from config when not set")
	flag.BoolVar(&cliArgs.setup, "setup", false, "Setup sql storage before starting")

	flag.Parse()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg, err := app.LoadConfig()
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	port := cliArgs.port
	if port == 0 {
		port = appCfg.Server.Port.Value()
	}

	logger.
		WithData(diag.MsgData{
			"version": version.Version,
			"gitHash": version.GitHash,
			"env":     appCfg.Env.Name,
			"store":   appCfg.Store.Kind.Value(),
			"port":    port,
		}).
		Info(ctx, "Starting %v", version.AppName)

	injector := app.BootstrapServices(appCfg)

	if cliArgs.setup && appCfg.Store.Kind.Value() == config.StoreKindSQL {
		if err := injector(func(storage dal.Storage) error {
			return storage.Setup(ctx)
		}); err != nil {
			logger.WithError(err).Error(ctx, "Failed to setup storage")
			os.Exit(1)
		}
	}

	if err := injector(func(service transactions.Service) error {
		return server.Start(ctx, port, service)
	}); err != nil {
		logger.WithError(err).Error(ctx, "Server failed")
		os.Exit(1)
	}
	logger.Info(ctx, "Server stopped")
}
