package bucket

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func BenchmarkAllowN(b *testing.B) {
	store := New()
	ctx := context.Background()

	for b.Loop() {
		_, _ = store.AllowN(ctx, "bench-key", 1, 1000, time.Minute)
	}
}

func BenchmarkAllowN_Parallel(b *testing.B) {
	store := New()
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = store.AllowN(ctx, "bench-key", 1, 1000, time.Minute)
		}
	})
}

// BenchmarkAllowN_HighCardinality exercises the idle bucket sweep.
func BenchmarkAllowN_HighCardinality(b *testing.B) {
	store := New()
	ctx := context.Background()
	var counter atomic.Int64

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			key := fmt.Sprintf("ip:10.0.%d.%d", (i/256)%256, i%256)
			_, _ = store.AllowN(ctx, key, 1, 100, time.Minute)
		}
	})
}
