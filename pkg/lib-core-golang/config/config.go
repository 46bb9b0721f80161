package config

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
)

const (
	appEnvVar = "APP_ENV"

	facetVar = "APP_ENV_FACET"

	clusterNameVar = "CLUSTER_NAME"

	awsSSMEndpointURLVar          = "AWS_SSM_ENDPOINT_URL"
	awsSSMEndpointTokenVar        = "AWS_SSM_ENDPOINT_TOKEN"
	awsSSMEndpointTokenHeaderName = "x-access-token"
)

var logger = diag.CreateLogger()

// AppEnv represents app env
type AppEnv struct {
	// ServiceName is a name of a current service
	ServiceName string

	// Name is a env name. By default taken from APP_ENV
	Name string

	// Facet is a env facet like preprod (for production). By default taken from APP_ENV_FACET
	Facet string

	// Name of a cluster where service is running
	ClusterName string
}

type appEnvCfg struct {
	lookupFlag  func(name string) *flag.Flag
	dotEnvFiles []string
}

type appEnvOpt func(*appEnvCfg)

func withLookupFlag(lookupFlag func(name string) *flag.Flag) appEnvOpt {
	return func(cfg *appEnvCfg) {
		cfg.lookupFlag = lookupFlag
	}
}

// WithDotEnv sets files to load env variables from. Missing files are skipped,
// already defined variables are never overwritten
func WithDotEnv(files ...string) appEnvOpt {
	return func(cfg *appEnvCfg) {
		cfg.dotEnvFiles = files
	}
}

// NewAppEnv creates a new instance of the app env from os env
// Will use "dev" by default or "test" when running tests
func NewAppEnv(serviceName string, opts ...appEnvOpt) AppEnv {
	cfg := appEnvCfg{
		lookupFlag:  flag.Lookup,
		dotEnvFiles: []string{".env"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, file := range cfg.dotEnvFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			logger.WithError(err).Warn(nil, "Failed to load env file %v", file)
		}
	}

	appEnv := os.Getenv(appEnvVar)
	if appEnv == "" {
		if v := cfg.lookupFlag("test.v"); v == nil {
			appEnv = "dev"
		} else {
			appEnv = "test"
		}
	}
	return AppEnv{
		Name:        appEnv,
		Facet:       os.Getenv(facetVar),
		ClusterName: os.Getenv(clusterNameVar),
		ServiceName: serviceName,
	}
}

// Source is an abstraction to read params
type Source interface {
	GetParameters(ctx context.Context, params []paramID) (map[paramID]interface{}, error)
}

type sourceBinding struct {
	name   string
	params []param
	source Source
}

func (b sourceBinding) paramIDs() []paramID {
	ids := make([]paramID, 0, len(b.params))
	for _, p := range b.params {
		ids = append(ids, p.id())
	}
	return ids
}

// ServiceConfig provides values of loaded params
type ServiceConfig interface {
	StringParam(p StringParam) StringVal
	IntParam(p IntParam) IntVal
	BoolParam(p BoolParam) BoolVal
}

type serviceConfig struct {
	sources []sourceBinding
	values  map[paramID]paramValue

	ticker    *time.Ticker
	refreshed chan<- bool
	stop      <-chan bool
}

func (cfg *serviceConfig) lookup(p param) paramValue {
	val, ok := cfg.values[p.id()]
	if !ok {
		panic(fmt.Sprintf("Unknown parameter: %v", p.id()))
	}
	return val
}

func (cfg *serviceConfig) StringParam(p StringParam) StringVal {
	return cfg.lookup(p).(StringVal)
}

func (cfg *serviceConfig) IntParam(p IntParam) IntVal {
	return cfg.lookup(p).(IntVal)
}

func (cfg *serviceConfig) BoolParam(p BoolParam) BoolVal {
	return cfg.lookup(p).(BoolVal)
}

// ServiceConfigOpt is an option of a service config
type ServiceConfigOpt func(cfg *serviceConfig)

// WithSource binds params to a source they should be fetched from
func WithSource(binding sourceBinding) ServiceConfigOpt {
	return func(cfg *serviceConfig) {
		cfg.sources = append(cfg.sources, binding)
	}
}

// WithRefreshInterval enables periodic refresh of values
func WithRefreshInterval(interval time.Duration) ServiceConfigOpt {
	return func(cfg *serviceConfig) {
		cfg.ticker = time.NewTicker(interval)
	}
}

func withTicker(ticker *time.Ticker) ServiceConfigOpt {
	return func(cfg *serviceConfig) {
		cfg.ticker = ticker
	}
}

func withRefreshed(refreshed chan<- bool) ServiceConfigOpt {
	return func(cfg *serviceConfig) {
		cfg.refreshed = refreshed
	}
}

func withStop(stop <-chan bool) ServiceConfigOpt {
	return func(cfg *serviceConfig) {
		cfg.stop = stop
	}
}

func newServiceConfig(opts ...ServiceConfigOpt) *serviceConfig {
	cfg := &serviceConfig{values: map[paramID]paramValue{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func loadInitialValues(cfg *serviceConfig) error {
	ctx := diag.ContextWithRequestID(context.Background(), uuid.NewV4().String())
	logger.Info(ctx, "Loading initial config values")
	for _, binding := range cfg.sources {
		values, err := binding.source.GetParameters(ctx, binding.paramIDs())
		if err != nil {
			return err
		}
		for _, p := range binding.params {
			rawValue, ok := values[p.id()]
			if !ok {
				return errors.Errorf("Parameter %v not found", p.id())
			}
			value := p.emptyValue()
			if err := value.setValue(rawValue); err != nil {
				return errors.Wrapf(err, "Failed to set value for parameter %v", p.id())
			}
			cfg.values[p.id()] = value
		}
	}
	return nil
}

func refreshValues(ctx context.Context, cfg *serviceConfig) {
	logger.Info(ctx, "Refreshing config parameters")
	for _, binding := range cfg.sources {
		values, err := binding.source.GetParameters(ctx, binding.paramIDs())
		if err != nil {
			logger.WithError(err).Error(ctx, "Failed to fetch from source: %v", binding.name)
			continue
		}
		for _, p := range binding.params {
			rawValue, ok := values[p.id()]
			if !ok {
				logger.Error(ctx, "Parameter %v not found (source=%v)", p.id(), binding.name)
				continue
			}
			if err := cfg.values[p.id()].setValue(rawValue); err != nil {
				logger.WithError(err).Error(ctx, "Failed to update parameter %v (source=%v)", p.id(), binding.name)
			}
		}
	}
}

func startRefreshingValues(cfg *serviceConfig) {
	go func() {
		for {
			ctx := diag.ContextWithRequestID(context.Background(), uuid.NewV4().String())
			select {
			case <-cfg.ticker.C:
				refreshValues(ctx, cfg)
				if cfg.refreshed != nil {
					cfg.refreshed <- true
				}
			case <-cfg.stop:
				logger.Warn(ctx, "Refresh stopped")
				cfg.ticker.Stop()
				return
			}
		}
	}()
}

// RandomRefreshInterval returns an interval in a 1-3 minutes range
// so instances of a service do not hit remote sources at the same time
func RandomRefreshInterval() time.Duration {
	rnd := rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
	return time.Duration(60+rnd.Intn(120)) * time.Second
}

// Load loads initial values from all sources and optionally
// starts refreshing them in background
func Load(opts ...ServiceConfigOpt) (ServiceConfig, error) {
	cfg := newServiceConfig(opts...)
	if err := loadInitialValues(cfg); err != nil {
		return nil, err
	}
	if cfg.ticker != nil {
		startRefreshingValues(cfg)
	}
	return cfg, nil
}
