package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestAside_MissThenHit(t *testing.T) {
	c, mr := useMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]uint) func() error {
		return func() error {
			calls++
			*dest = []uint{2, 3}
			return nil
		}
	}

	var first []uint
	require.NoError(t, c.Aside(ctx, FriendIDsKey(1), &first, FriendIDsTTL, fetch(&first)))
	assert.Equal(t, []uint{2, 3}, first)
	assert.True(t, mr.Exists("friends:1:ids"))
	assert.Equal(t, FriendIDsTTL, mr.TTL("friends:1:ids"))

	var second []uint
	require.NoError(t, c.Aside(ctx, FriendIDsKey(1), &second, FriendIDsTTL, fetch(&second)))
	assert.Equal(t, []uint{2, 3}, second)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	c, mr := useMiniredis(t)
	boom := errors.New("db down")

	var dest map[string]int
	err := c.Aside(context.Background(), StatsKey(4), &dest, StatsTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("stats:4"))
}

func TestAside_WithoutRedisCallsFetch(t *testing.T) {
	for name, c := range map[string]*Cache{"nil cache": nil, "nil client": New(nil)} {
		t.Run(name, func(t *testing.T) {
			var dest string
			require.NoError(t, c.Aside(context.Background(), PostKey(1), &dest, PostTTL, func() error {
				dest = "fresh"
				return nil
			}))
			assert.Equal(t, "fresh", dest)
			c.Invalidate(context.Background(), PostKey(1))
			assert.NoError(t, c.Close())
		})
	}
}

func TestCache_InstancesAreIndependent(t *testing.T) {
	a, mrA := useMiniredis(t)
	b, mrB := useMiniredis(t)
	ctx := context.Background()

	require.NoError(t, a.SetJSON(ctx, PostKey(1), "from a", PostTTL))
	assert.True(t, mrA.Exists(PostKey(1)))
	assert.False(t, mrB.Exists(PostKey(1)))

	var dest string
	found, err := b.GetJSON(ctx, PostKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_RedisOutageFallsBackToFetch(t *testing.T) {
	c, mr := useMiniredis(t)
	mr.Close()

	var dest string
	require.NoError(t, c.Aside(context.Background(), PostKey(2), &dest, time.Minute, func() error {
		dest = "from db"
		return nil
	}))
	assert.Equal(t, "from db", dest)
}

func TestInvalidateFriendships(t *testing.T) {
	c, mr := useMiniredis(t)
	for _, k := range []string{FriendIDsKey(1), FriendIDsKey(2), StatsKey(1), PostKey(9)} {
		require.NoError(t, mr.Set(k, "x"))
	}

	c.InvalidateFriendships(context.Background(), 1, 2)

	assert.False(t, mr.Exists(FriendIDsKey(1)))
	assert.False(t, mr.Exists(FriendIDsKey(2)))
	assert.False(t, mr.Exists(StatsKey(1)))
	assert.True(t, mr.Exists(PostKey(9)))
}

func TestInitRedis(t *testing.T) {
	assert.Nil(t, InitRedis("127.0.0.1:1").Client(), "unreachable server disables caching")

	mr := miniredis.RunT(t)
	c := InitRedis("redis://" + mr.Addr())
	t.Cleanup(func() { _ = c.Close() })
	require.NotNil(t, c.Client())
	require.NoError(t, c.SetJSON(context.Background(), StatsKey(1), 3, StatsTTL))
	assert.True(t, mr.Exists(StatsKey(1)))
}
