//go:build integration

package embedding_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"doccheck/internal/embedding"
	"doccheck/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *embedding.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.SharedRedis(s.T())
	s.cache = embedding.NewRedisCache(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	key := embedding.CacheKey("ollama:embeddinggemma", "widget manufacturing equipment")
	vec := []float32{0.125, -0.5, 0.75}

	s.Require().NoError(s.cache.Set(ctx, key, vec))

	got, ok, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(vec, got)
}

func (s *RedisCacheSuite) TestMissingKey() {
	_, ok, err := s.cache.Get(context.Background(), "absent")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	short := embedding.NewRedisCache(s.redis.Client, time.Second)
	s.Require().NoError(short.Set(ctx, "k", []float32{1}))

	ttl, err := s.redis.Client.TTL(ctx, "doccheck:embedding:k").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Second)
}

func (s *RedisCacheSuite) TestServiceSharesCacheAcrossInstances() {
	ctx := context.Background()
	engine := &countingEngine{vec: []float32{1, 0}}

	first, err := embedding.NewService(engine, embedding.WithCache(s.cache))
	s.Require().NoError(err)
	second, err := embedding.NewService(engine, embedding.WithCache(embedding.NewRedisCache(s.redis.Client, time.Minute)))
	s.Require().NoError(err)

	_, err = first.Encode(ctx, "carton")
	s.Require().NoError(err)
	_, err = second.Encode(ctx, "carton")
	s.Require().NoError(err)

	s.Equal(1, engine.calls)
}

type countingEngine struct {
	calls int
	vec   []float32
}

func (e *countingEngine) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	return e.vec, nil
}

func (e *countingEngine) Name() string { return "counting" }
