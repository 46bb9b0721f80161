package app

import (
	"github.com/evgeny-myasishchev/ledger.transactions-entry/config"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
)

// LoadConfig will load the config and setup logging accordingly
func LoadConfig() (*config.AppConfig, error) {
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, err
	}
	SetupLogging(appCfg)
	return appCfg, nil
}

// SetupLogging applies log settings of a given config
func SetupLogging(appCfg *config.AppConfig) {
	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogMode(appCfg.Log.Mode.Value())
		setup.SetLogLevel(appCfg.Log.Level.Value())
	})
}
