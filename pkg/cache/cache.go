package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/transactions"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

var logger = diag.CreateLogger()

// ListsKey is a redis hash that holds cached lists
const ListsKey = "transactions:lists"

// DefaultTTL is how long cached lists are kept if not invalidated earlier
const DefaultTTL = 5 * time.Minute

// RedisClient is a subset of redis commands the cache is using
type RedisClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type cachedStore struct {
	store  transactions.Store
	client RedisClient
	ttl    time.Duration
}

func queryKey(query *types.TransactionsQuery) string {
	var search string
	if query != nil {
		search = strings.ToLower(strings.TrimSpace(query.Search))
	}
	return "limit=" + strconv.Itoa(query.EffectiveLimit()) + "&q=" + search
}

func (s *cachedStore) SaveTransaction(ctx context.Context, trx *types.Transaction) error {
	if err := s.store.SaveTransaction(ctx, trx); err != nil {
		return err
	}
	if err := s.client.Del(ctx, ListsKey).Err(); err != nil {
		logger.WithError(err).Error(ctx, "Failed to invalidate cached lists")
	}
	return nil
}

func (s *cachedStore) readCached(ctx context.Context, field string) ([]types.Transaction, bool) {
	data, err := s.client.HGet(ctx, ListsKey, field).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.WithError(err).Warn(ctx, "Failed to read cached list")
		return nil, false
	}
	var result []types.Transaction
	if err := json.Unmarshal(data, &result); err != nil {
		logger.WithError(err).Warn(ctx, "Ignoring malformed cached list")
		return nil, false
	}
	return result, true
}

func (s *cachedStore) writeCached(ctx context.Context, field string, list []types.Transaction) error {
	data, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal list")
	}
	if err := s.client.HSet(ctx, ListsKey, field, data).Err(); err != nil {
		return errors.Wrap(err, "Failed to cache list")
	}
	if err := s.client.Expire(ctx, ListsKey, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "Failed to set cached lists ttl")
	}
	return nil
}

func (s *cachedStore) ListTransactions(ctx context.Context, query *types.TransactionsQuery) ([]types.Transaction, error) {
	field := queryKey(query)
	if cached, ok := s.readCached(ctx, field); ok {
		logger.Debug(ctx, "Cache hit: %v", field)
		return cached, nil
	}
	list, err := s.store.ListTransactions(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := s.writeCached(ctx, field, list); err != nil {
		logger.WithError(err).Warn(ctx, "Failed to cache list %v", field)
	}
	return list, nil
}

// Opt is an option of a cached store
type Opt func(s *cachedStore)

// WithTTL sets for how long lists are cached
func WithTTL(ttl time.Duration) Opt {
	return func(s *cachedStore) {
		s.ttl = ttl
	}
}

// NewCachedStore decorates a store with a redis cache of lists.
// Any save invalidates all cached lists
func NewCachedStore(store transactions.Store, client RedisClient, opts ...Opt) transactions.Store {
	s := &cachedStore{store: store, client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisClient creates a client from redis url like redis://localhost:6379/0
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse redis url")
	}
	return redis.NewClient(opts), nil
}
