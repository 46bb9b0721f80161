package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/config"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/app"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/dal"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/tui"
)

var logger = diag.CreateLogger()

var cliArgs struct {
	logFile string
}

func init() {
	flag.StringVar(&cliArgs.logFile, "log-file", "tui.log", "File to write logs to")

	flag.Parse()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logFile, err := os.OpenFile(cliArgs.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	appCfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load app config: %v\n", err)
		os.Exit(1)
	}
	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogOutput(logFile)
	})

	injector := app.BootstrapServices(appCfg)

	if appCfg.Store.Kind.Value() == config.StoreKindSQL {
		if err := injector(func(storage dal.Storage) error {
			return storage.Setup(ctx)
		}); err != nil {
			logger.WithError(err).Error(ctx, "Failed to setup storage")
			fmt.Fprintf(os.Stderr, "Failed to setup storage: %v\n", err)
			os.Exit(1)
		}
	}

	if err := injector(func(service transactions.Service) error {
		return tui.NewApp(service).Run(ctx)
	}); err != nil {
		logger.WithError(err).Error(ctx, "Terminal app failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
