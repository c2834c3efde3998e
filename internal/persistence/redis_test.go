package persistence

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffdesk/staffdesk/internal/config"
)

type trendRow struct {
	Month   string `json:"month"`
	Tickets int    `json:"tickets"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *TrendCache) {
	t.Helper()
	srv := miniredis.RunT(t)
	r, cache := OpenTrendCache(context.Background(), config.RedisConfig{
		Addr:            srv.Addr(),
		TrendTTLSeconds: int(ttl / time.Second),
	}, zap.NewNop())
	require.NotNil(t, cache)
	t.Cleanup(r.Close)
	return srv, cache
}

func TestTrendCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv, cache := newTestCache(t, time.Minute)

	var got []trendRow
	hit, err := cache.Get(ctx, "tickets:1:06/15/2024", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []trendRow{{Month: "05-2024", Tickets: 2}, {Month: "06-2024", Tickets: 1}}
	require.NoError(t, cache.Set(ctx, "tickets:1:06/15/2024", want))
	assert.True(t, srv.Exists("staffdesk:trends:tickets:1:06/15/2024"))
	assert.Equal(t, time.Minute, srv.TTL("staffdesk:trends:tickets:1:06/15/2024"))

	hit, err = cache.Get(ctx, "tickets:1:06/15/2024", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	srv.FastForward(2 * time.Minute)
	hit, err = cache.Get(ctx, "tickets:1:06/15/2024", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestTrendCacheClearOnlyDropsTrendKeys(t *testing.T) {
	ctx := context.Background()
	srv, cache := newTestCache(t, time.Minute)

	for i := 0; i < 250; i++ {
		require.NoError(t, cache.Set(ctx, "interactions:"+strconv.Itoa(i), []trendRow{}))
	}
	require.NoError(t, srv.Set("session:operator", "keep"))

	require.NoError(t, cache.Clear(ctx))
	for _, key := range srv.Keys() {
		assert.NotContains(t, key, trendKeyPrefix)
	}
	assert.True(t, srv.Exists("session:operator"))

	assert.NoError(t, cache.Clear(ctx), "clearing an empty cache")
}

func TestOpenTrendCacheDisabled(t *testing.T) {
	ctx := context.Background()

	r, cache := OpenTrendCache(ctx, config.RedisConfig{}, zap.NewNop())
	assert.Nil(t, r)
	assert.Nil(t, cache)

	srv := miniredis.RunT(t)
	r, cache = OpenTrendCache(ctx, config.RedisConfig{Addr: srv.Addr()}, zap.NewNop())
	assert.Nil(t, r, "zero TTL")
	assert.Nil(t, cache)
}

func TestOpenTrendCacheUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	r, cache := OpenTrendCache(context.Background(), config.RedisConfig{Addr: addr, TrendTTLSeconds: 60}, zap.NewNop())
	assert.Nil(t, r)
	assert.Nil(t, cache)

	var nilRedis *Redis
	assert.Error(t, nilRedis.Ping(context.Background()))
}
