package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/internal/mocks"
	"github.com/evgeny-myasishchev/ledger.transactions-entry/pkg/types"
)

type fakeRedis struct {
	hashes  map[string]map[string]string
	expires map[string]time.Duration
	err     error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		hashes:  map[string]map[string]string{},
		expires: map[string]time.Duration{},
	}
}

func (r *fakeRedis) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	if r.err != nil {
		return redis.NewStringResult("", r.err)
	}
	val, ok := r.hashes[key][field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (r *fakeRedis) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	if r.err != nil {
		return redis.NewIntResult(0, r.err)
	}
	hash, ok := r.hashes[key]
	if !ok {
		hash = map[string]string{}
		r.hashes[key] = hash
	}
	for i := 0; i+1 < len(values); i += 2 {
		field := values[i].(string)
		switch v := values[i+1].(type) {
		case []byte:
			hash[field] = string(v)
		case string:
			hash[field] = v
		}
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (r *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if r.err != nil {
		return redis.NewBoolResult(false, r.err)
	}
	r.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (r *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if r.err != nil {
		return redis.NewIntResult(0, r.err)
	}
	var deleted int64
	for _, key := range keys {
		if _, ok := r.hashes[key]; ok {
			delete(r.hashes, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func randomTransactions() []types.Transaction {
	return []types.Transaction{
		{
			ID:          faker.UUIDHyphenated(),
			Description: faker.Sentence(),
			Price:       decimal.RequireFromString("10.5"),
			Category:    faker.Word(),
			Type:        types.TransactionTypeIncome,
			CreatedAt:   time.Now().UTC().Truncate(time.Second),
		},
	}
}

func TestCachedStore_ListTransactions(t *testing.T) {
	type testCase struct {
		name   string
		query  *types.TransactionsQuery
		setup  func(store *mocks.MockStore, client *fakeRedis)
		assert func(t *testing.T, client *fakeRedis, got []types.Transaction, err error)
	}
	tests := []func() testCase{
		func() testCase {
			want := randomTransactions()
			query := &types.TransactionsQuery{Search: faker.Word()}
			return testCase{
				name:  "miss loads from store and caches",
				query: query,
				setup: func(store *mocks.MockStore, client *fakeRedis) {
					store.EXPECT().ListTransactions(gomock.Any(), query).Return(want, nil)
				},
				assert: func(t *testing.T, client *fakeRedis, got []types.Transaction, err error) {
					if !assert.NoError(t, err) {
						return
					}
					assert.Equal(t, want, got)
					assert.Contains(t, client.hashes[ListsKey], queryKey(query))
					assert.Equal(t, DefaultTTL, client.expires[ListsKey])
				},
			}
		},
		func() testCase {
			want := randomTransactions()
			query := &types.TransactionsQuery{Search: faker.Word(), Limit: 5}
			return testCase{
				name:  "hit does not touch the store",
				query: query,
				setup: func(store *mocks.MockStore, client *fakeRedis) {
					data, err := json.Marshal(want)
					if err != nil {
						panic(err)
					}
					client.hashes[ListsKey] = map[string]string{queryKey(query): string(data)}
				},
				assert: func(t *testing.T, client *fakeRedis, got []types.Transaction, err error) {
					if !assert.NoError(t, err) {
						return
					}
					if !assert.Len(t, got, 1) {
						return
					}
					assert.Equal(t, want[0].ID, got[0].ID)
					assert.True(t, want[0].Price.Equal(got[0].Price))
					assert.True(t, want[0].CreatedAt.Equal(got[0].CreatedAt))
				},
			}
		},
		func() testCase {
			want := randomTransactions()
			return testCase{
				name: "malformed cache entry is ignored",
				setup: func(store *mocks.MockStore, client *fakeRedis) {
					client.hashes[ListsKey] = map[string]string{queryKey(nil): "{" + faker.Word()}
					store.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(want, nil)
				},
				assert: func(t *testing.T, client *fakeRedis, got []types.Transaction, err error) {
					assert.NoError(t, err)
					assert.Equal(t, want, got)
				},
			}
		},
		func() testCase {
			want := randomTransactions()
			return testCase{
				name: "fall back to store if redis failed",
				setup: func(store *mocks.MockStore, client *fakeRedis) {
					client.err = errors.New(faker.Sentence())
					store.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(want, nil)
				},
				assert: func(t *testing.T, client *fakeRedis, got []types.Transaction, err error) {
					assert.NoError(t, err)
					assert.Equal(t, want, got)
				},
			}
		},
		func() testCase {
			storeErr := errors.New(faker.Sentence())
			return testCase{
				name: "store failure",
				setup: func(store *mocks.MockStore, client *fakeRedis) {
					store.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, storeErr)
				},
				assert: func(t *testing.T, client *fakeRedis, got []types.Transaction, err error) {
					assert.Equal(t, storeErr, err)
					assert.Empty(t, client.hashes)
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			store := mocks.NewMockStore(ctrl)
			client := newFakeRedis()
			tt.setup(store, client)
			got, err := NewCachedStore(store, client).ListTransactions(context.TODO(), tt.query)
			tt.assert(t, client, got, err)
		})
	}
}

func TestCachedStore_SaveTransaction(t *testing.T) {
	type testCase struct {
		name   string
		setup  func(store *mocks.MockStore, client *fakeRedis, trx *types.Transaction)
		assert func(t *testing.T, client *fakeRedis, err error)
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name: "save and invalidate lists",
				setup: func(store *mocks.MockStore, client *fakeRedis, trx *types.Transaction) {
					client.hashes[ListsKey] = map[string]string{queryKey(nil): "[]"}
					store.EXPECT().SaveTransaction(gomock.Any(), trx).Return(nil)
				},
				assert: func(t *testing.T, client *fakeRedis, err error) {
					assert.NoError(t, err)
					assert.NotContains(t, client.hashes, ListsKey)
				},
			}
		},
		func() testCase {
			storeErr := errors.New(faker.Sentence())
			return testCase{
				name: "keep lists if save failed",
				setup: func(store *mocks.MockStore, client *fakeRedis, trx *types.Transaction) {
					client.hashes[ListsKey] = map[string]string{queryKey(nil): "[]"}
					store.EXPECT().SaveTransaction(gomock.Any(), trx).Return(storeErr)
				},
				assert: func(t *testing.T, client *fakeRedis, err error) {
					assert.Equal(t, storeErr, err)
					assert.Contains(t, client.hashes, ListsKey)
				},
			}
		},
		func() testCase {
			return testCase{
				name: "ignore redis failure",
				setup: func(store *mocks.MockStore, client *fakeRedis, trx *types.Transaction) {
					client.err = errors.New(faker.Sentence())
					store.EXPECT().SaveTransaction(gomock.Any(), trx).Return(nil)
				},
				assert: func(t *testing.T, client *fakeRedis, err error) {
					assert.NoError(t, err)
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			store := mocks.NewMockStore(ctrl)
			client := newFakeRedis()
			trx := &randomTransactions()[0]
			tt.setup(store, client, trx)
			err := NewCachedStore(store, client, WithTTL(time.Minute)).SaveTransaction(context.TODO(), trx)
			tt.assert(t, client, err)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	if !assert.NoError(t, err) {
		return
	}
	defer client.Close()
	assert.Equal(t, "localhost:6379", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	_, err = NewRedisClient("not a url")
	assert.Error(t, err)
}
