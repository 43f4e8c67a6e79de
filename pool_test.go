package doceditor

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire(context.Context) (*Exporter, error)
	Export(context.Context, *Document) (*ExportArtifact, error)
	Release(*Exporter)
	Size() int
	Close() error
} = (*ExporterPool)(nil)

// newTestPool builds a pool whose exporters never start a browser.
func newTestPool(t *testing.T, n int) *ExporterPool {
	t.Helper()

	pool, err := NewExporterPool(n, WithRasterizer(&fakeRasterizer{}))
	if err != nil {
		t.Fatalf("NewExporterPool() error = %v", err)
	}
	return pool
}

// mustAcquire fails the test when the pool cannot hand out an exporter.
func mustAcquire(t *testing.T, pool *ExporterPool) *Exporter {
	t.Helper()

	x, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	return x
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestResolvePoolSize_Bounds(t *testing.T) {
	t.Parallel()

	t.Run("minimum is 1", func(t *testing.T) {
		t.Parallel()

		got := ResolvePoolSize(0)
		if got < MinPoolSize {
			t.Errorf("ResolvePoolSize(0) = %d, should be at least %d", got, MinPoolSize)
		}
	})

	t.Run("maximum is 8", func(t *testing.T) {
		t.Parallel()

		got := ResolvePoolSize(0)
		if got > MaxPoolSize {
			t.Errorf("ResolvePoolSize(0) = %d, should be at most %d", got, MaxPoolSize)
		}
	})

	t.Run("explicit can exceed max", func(t *testing.T) {
		t.Parallel()

		got := ResolvePoolSize(16)
		if got != 16 {
			t.Errorf("ResolvePoolSize(16) = %d, want 16", got)
		}
	})
}

func TestExporterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 2)
	defer pool.Close()

	x1 := mustAcquire(t, pool)
	x2 := mustAcquire(t, pool)
	if x1 == x2 {
		t.Error("expected different exporter instances")
	}

	pool.Release(x1)
	x3 := mustAcquire(t, pool)

	if x3 != x1 {
		t.Error("expected to get back released exporter")
	}

	pool.Release(x2)
	pool.Release(x3)
}

func TestExporterPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := newTestPool(t, tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExporterPool_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 4)
	defer pool.Close()

	var wg sync.WaitGroup
	iterations := 20

	for i := 0; i < iterations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			x, err := pool.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			time.Sleep(5 * time.Millisecond)
			pool.Release(x)
		}()
	}

	// Should complete without deadlock
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("concurrent access test timed out - possible deadlock")
	}
}

func TestExporterPool_ClosePreventsFurtherUse(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 2)

	x := mustAcquire(t, pool)
	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Release after close should not panic
	pool.Release(x)

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestNewExporterPool_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := NewExporterPool(2, WithSliceMode("diagonal"))
	if !errors.Is(err, ErrInvalidSliceMode) {
		t.Errorf("NewExporterPool() error = %v, want ErrInvalidSliceMode", err)
	}
}

func TestExporterPool_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 1)
	defer pool.Close()

	x := mustAcquire(t, pool)
	defer pool.Release(x)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() on a full pool error = %v, want context.DeadlineExceeded", err)
	}
}

func TestExporterPool_CloseWakesWaiters(t *testing.T) {
	t.Parallel()

	pool := newTestPool(t, 1)
	_ = mustAcquire(t, pool)

	errc := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(context.Background())
		errc <- err
	}()

	time.Sleep(10 * time.Millisecond)
	_ = pool.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrPoolClosed) {
			t.Errorf("waiting Acquire() error = %v, want ErrPoolClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiter not released by Close")
	}
}

func TestExporterPool_Export(t *testing.T) {
	t.Parallel()

	pool, err := NewExporterPool(1, WithRasterizer(&fakeRasterizer{raster: rasterOf(t, 420, 1300)}))
	if err != nil {
		t.Fatalf("NewExporterPool() error = %v", err)
	}
	defer pool.Close()

	for i := 0; i < 2; i++ {
		artifact, err := pool.Export(context.Background(), &Document{Version: 1, Title: "Lease", HTML: "<p>x</p>"})
		if err != nil {
			t.Fatalf("Export() #%d error = %v", i+1, err)
		}
		if artifact.Pages != 3 {
			t.Errorf("Pages = %d, want 3", artifact.Pages)
		}
	}
}
