package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestRange_CoversEachIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 7, MinChunkSize: 3}

	n := 101
	hits := make([]int32, n)
	Range(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}, cfg)

	for i, h := range hits {
		if h != 1 {
			t.Errorf("index %d visited %d times", i, h)
		}
	}
}

func TestRange_Empty(t *testing.T) {
	called := false
	Range(0, func(_, _ int) { called = true }, DefaultConfig())
	if called {
		t.Error("Range called f for an empty range")
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestWithWorkers(t *testing.T) {
	cfg := DefaultConfig().WithWorkers(1)
	if cfg.Enabled {
		t.Error("one worker should disable parallelism")
	}
	cfg = cfg.WithWorkers(4)
	if !cfg.Enabled || cfg.NumWorkers != 4 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if got := cfg.WithWorkers(0); got != cfg {
		t.Errorf("WithWorkers(0) changed config: %+v", got)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}
