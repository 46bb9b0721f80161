package config

import (
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/config"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/version"
)

var appEnv = config.NewAppEnv(version.AppName)
var configBuilder = config.NewBuilder(appEnv)

var localParams = configBuilder.NewParamsBuilder("local", configBuilder.WithLocalSource())
var remoteParams = configBuilder.NewParamsBuilder("remote", configBuilder.WithRemoteSource())

// Do not change vars below at runtime
var (
	LogLevel = localParams.NewParam("log/level").String()
	LogMode  = localParams.NewParam("log/mode").String()

	ServerPort = localParams.NewParam("server/port").Int()

	StorageDriver = localParams.NewParam("storage/driver").String()
	StorageDSN    = localParams.NewParam("storage/data-source-name").String()

	StoreKind = localParams.NewParam("store/kind").String()

	APIBaseURL = remoteParams.NewParam("api/base-url").String()

	RedisURL        = localParams.NewParam("redis/url").String()
	RedisTTLSeconds = localParams.NewParam("redis/ttl-seconds").Int()
)

// Store kinds
const (
	StoreKindSQL = "sql"
	StoreKindAPI = "api"
)

// Log represents logger specific options
type Log struct {
	Level config.StringVal
	Mode  config.StringVal
}

// Server represents http server settings
type Server struct {
	Port config.IntVal
}

// Storage represents storage settings
type Storage struct {
	Driver config.StringVal
	DSN    config.StringVal
}

// Store selects where transactions are kept: sql or api
type Store struct {
	Kind config.StringVal
}

// API represents remote transactions api settings
type API struct {
	BaseURL config.StringVal
}

// Redis represents cache settings. Cache is off when url is empty
type Redis struct {
	URL        config.StringVal
	TTLSeconds config.IntVal
}

// AppConfig is a toplevel config structure
type AppConfig struct {
	Env     config.AppEnv
	Log     Log
	Server  Server
	Storage Storage
	Store   Store
	API     API
	Redis   Redis
}

// LoadAppConfig will load and initialize app config structure
func LoadAppConfig(opts ...config.ServiceConfigOpt) (*AppConfig, error) {
	cfg, err := configBuilder.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		Env: configBuilder.AppEnv(),
		Log: Log{
			Level: cfg.StringParam(LogLevel),
			Mode:  cfg.StringParam(LogMode),
		},
		Server: Server{
			Port: cfg.IntParam(ServerPort),
		},
		Storage: Storage{
			Driver: cfg.StringParam(StorageDriver),
			DSN:    cfg.StringParam(StorageDSN),
		},
		Store: Store{
			Kind: cfg.StringParam(StoreKind),
		},
		API: API{
			BaseURL: cfg.StringParam(APIBaseURL),
		},
		Redis: Redis{
			URL:        cfg.StringParam(RedisURL),
			TTLSeconds: cfg.IntParam(RedisTTLSeconds),
		},
	}, nil
}
