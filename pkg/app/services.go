package app

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/config"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/api"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/cache"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/dal"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions"
)

var logger = diag.CreateLogger()

// Injector is a function that will inject desired services
// to a target function
type Injector func(function interface{}) error

// newStore resolves only the store of a configured kind
func newStore(appCfg *config.AppConfig, inject Injector) (transactions.Store, error) {
	var store transactions.Store
	var err error
	switch kind := appCfg.Store.Kind.Value(); kind {
	case config.StoreKindSQL:
		err = inject(func(storage dal.Storage) {
			store = storage
		})
	case config.StoreKindAPI:
		err = inject(func(remote api.API) {
			store = remote
		})
	default:
		return nil, errors.Errorf("Unknown store kind: %v", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to resolve %v store", appCfg.Store.Kind.Value())
	}

	redisURL := appCfg.Redis.URL.Value()
	if redisURL == "" {
		return store, nil
	}
	client, err := cache.NewRedisClient(redisURL)
	if err != nil {
		return nil, err
	}
	logger.Info(nil, "Caching transactions lists in redis")
	ttl := time.Duration(appCfg.Redis.TTLSeconds.Value()) * time.Second
	return cache.NewCachedStore(store, client, cache.WithTTL(ttl)), nil
}

// BootstrapServices setup di container with all app services
func BootstrapServices(appCfg *config.AppConfig) Injector {
	c := dig.New()
	inject := func(function interface{}) error {
		return c.Invoke(function)
	}

	c.Provide(func() *config.AppConfig {
		return appCfg
	})

	c.Provide(func() (*sql.DB, error) {
		return dal.OpenDB(appCfg.Storage.Driver.Value(), appCfg.Storage.DSN.Value())
	})

	c.Provide(func(db *sql.DB) (dal.Storage, error) {
		return dal.NewSQLStorage(dal.WithSQLDb(db))
	})

	c.Provide(func() api.API {
		return api.NewAPI(appCfg.API.BaseURL.Value())
	})

	c.Provide(func() (transactions.Store, error) {
		return newStore(appCfg, inject)
	})

	c.Provide(func(store transactions.Store) transactions.Service {
		return transactions.NewService(store)
	})

	return inject
}
